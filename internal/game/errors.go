// internal/game/errors.go
package game

import "fmt"

// Kind buckets every engine error into one of the four failure classes the
// API surfaces. Callers branch on the kind to decide whether a retry can help.
type Kind uint8

const (
	// KindValidation means the arguments were bad; retrying unchanged cannot succeed.
	KindValidation Kind = iota + 1
	// KindState means the game is not in a status that permits the operation.
	KindState
	// KindAuthorization means the caller lacks the required role or the system is paused.
	KindAuthorization
	// KindTransfer means the underlying ledger debit/credit failed. The game state
	// is untouched, so the same call may be retried once the cause is fixed.
	KindTransfer
)

// Error is the engine's error type. Sentinel values below compare by Code,
// so errors.Is works across fmt.Errorf("%w") wrapping.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error // underlying cause, set for transfer errors
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, regardless of message detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidPlayerCount = &Error{Kind: KindValidation, Code: "invalid_player_count", Msg: "requested player count must be at least 2"}
	ErrNotFound           = &Error{Kind: KindValidation, Code: "game_not_found", Msg: "no game with that id was ever created"}
	ErrInvalidWinnerSet   = &Error{Kind: KindValidation, Code: "invalid_winner_set", Msg: "winner set is empty, mismatched, duplicated, or not drawn from participants"}
	ErrZeroTotalScore     = &Error{Kind: KindValidation, Code: "zero_total_score", Msg: "scores must be strictly positive"}

	ErrGameNotOpen      = &Error{Kind: KindState, Code: "game_not_open", Msg: "game is not accepting stakes"}
	ErrGameFull         = &Error{Kind: KindState, Code: "game_full", Msg: "all player slots are taken"}
	ErrAlreadyStaked    = &Error{Kind: KindState, Code: "already_staked", Msg: "account has already staked in this game"}
	ErrGameExpired      = &Error{Kind: KindState, Code: "game_expired", Msg: "staking window has closed"}
	ErrGameNotActive    = &Error{Kind: KindState, Code: "game_not_active", Msg: "game is not awaiting settlement"}
	ErrGameNotExpirable = &Error{Kind: KindState, Code: "game_not_expirable", Msg: "game is not open past its staking deadline"}
)

// transferErr wraps a ledger failure so it carries the transfer kind while
// remaining unwrappable to the ledger's own sentinel (e.g. insufficient funds).
func transferErr(op string, err error) error {
	return &Error{Kind: KindTransfer, Code: "transfer_failed", Msg: "ledger " + op + " failed", Err: err}
}

// KindOf reports the taxonomy kind of err, or 0 for errors from outside the engine.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}
