package menu

// Error is a typed, recoverable condition surfaced to the transport boundary.
// The boundary maps codes to user-facing feedback; none of these are fatal.
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns a stable machine-readable identifier for the condition.
func (e *Error) Code() string { return e.code }

var (
	// ErrInvalidMenuState is returned when a menu is unknown, closed, or halted.
	ErrInvalidMenuState = &Error{code: "INVALID_MENU_STATE", msg: "menu is unknown or no longer accepts changes"}
	// ErrInvalidItemIndex is returned for an out-of-range item index.
	ErrInvalidItemIndex = &Error{code: "INVALID_ITEM_INDEX", msg: "item index out of range"}
	// ErrEmptySelection is returned when a vote is submitted with all-zero pending quantities.
	ErrEmptySelection = &Error{code: "EMPTY_SELECTION", msg: "nothing selected to vote for"}
	// ErrNoChangeDetected is returned when a vote matches the user's previous commit exactly.
	ErrNoChangeDetected = &Error{code: "NO_CHANGE_DETECTED", msg: "vote is identical to the previous one"}
	// ErrDuplicateMenuIdentity is returned when a freshly derived menu identity collides.
	ErrDuplicateMenuIdentity = &Error{code: "DUPLICATE_MENU_IDENTITY", msg: "menu identity already exists"}
)
