package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrOAuthFailed        ErrCode = "OAUTH_FAILED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrRankNotAllowed   ErrCode = "RANK_NOT_ALLOWED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Intake ────────────────────────────────────────────────────────
	ErrApplicationsClosed  ErrCode = "APPLICATIONS_CLOSED"
	ErrDuplicateSubmission ErrCode = "DUPLICATE_SUBMISSION"

	// ─── Exam ──────────────────────────────────────────────────────────
	ErrExamNotAuthorized     ErrCode = "EXAM_NOT_AUTHORIZED"
	ErrAlreadyAttempted      ErrCode = "ALREADY_ATTEMPTED"
	ErrSessionInactive       ErrCode = "SESSION_INACTIVE"
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"

	// ─── Messaging ─────────────────────────────────────────────────────
	ErrNotConversable ErrCode = "NOT_CONVERSABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── External ──────────────────────────────────────────────────────
	ErrDiscordUnavailable ErrCode = "DISCORD_UNAVAILABLE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid username or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrOAuthFailed:
		return "Discord sign-in failed. Please try again."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrRankNotAllowed:
		return "Your rank does not permit this action."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Intake ────────────────────────────────────────────────────────
	case ErrApplicationsClosed:
		return "Applications are currently closed."
	case ErrDuplicateSubmission:
		return "An application for this Discord account already exists."

	// ─── Exam ──────────────────────────────────────────────────────────
	case ErrExamNotAuthorized:
		return "You are not authorized to take this test."
	case ErrAlreadyAttempted:
		return "The test has already been attempted."
	case ErrSessionInactive:
		return "The test session is no longer active."
	case ErrInsufficientQuestions:
		return "The test cannot start right now. Please contact a recruiter."

	// ─── Messaging ─────────────────────────────────────────────────────
	case ErrNotConversable:
		return "You can only message users you are paired with."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── External ──────────────────────────────────────────────────────
	case ErrDiscordUnavailable:
		return "Discord could not be reached. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
