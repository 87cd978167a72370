package bot

// User-facing texts. The group audience is Khmer-speaking; toasts that show
// only to the pressing user stay short.
const (
	welcomeMessage = `សួស្តី! ខ្ញុំជា Bot ដែលបង្កើត Menu ដោយស្វ័យប្រវត្តិ។

របៀបប្រើប្រាស់៖
១. ជ្រើសរើសបរិមាណម្ហូបដែលអ្នកចង់ Order
២. ចុចប៊ូតុង Vote ដើម្បីបញ្ជាក់
៣. រង់ចាំការជ្រើសរើសរួចរាល់ រួចចុចប៊ូតុង Order 🛒`

	defaultDailyMessage = "ថ្ងៃនេះបានម្ហូបអ្វី?"

	unsubscribedMessage = "បានបិទការរំលឹកប្រចាំថ្ងៃសម្រាប់ជជែកនេះ។"

	msgMenuNotFound = "ខ្ញុំមិនអាចរកឃើញ menu នេះទេ។"
	msgNoOrders     = "មិនមានការបញ្ជាទិញណាមួយឡើយ។"
	msgNoSelection  = "❗ You haven't selected any food yet!"
	msgNoChange     = "You already voted with this selection."
	msgOrderClosed  = "ការបញ្ជាទិញត្រូវបានបិទ ✅"
	msgVoteOK       = "✅ Voted!"

	btnVote  = "✅ Vote"
	btnOrder = "🛒 Order"
	btnClose = "❌ Close Order"
)
