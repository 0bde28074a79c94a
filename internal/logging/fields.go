package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a record for filtering (e.g. "pair_recorded").
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the kind of human decision being logged.
	FieldDecisionType = "decision_type"
	// FieldDecisionResult holds the answer given.
	FieldDecisionResult = "decision_result"
	// FieldSessionID is the standardized structured logging key for scan session identifiers.
	FieldSessionID = "session_id"
	// FieldPath is the standardized key for the filesystem path an event concerns.
	FieldPath = "path"
	// FieldSimulate flags records produced while mutations are disabled.
	FieldSimulate = "simulate"
)
