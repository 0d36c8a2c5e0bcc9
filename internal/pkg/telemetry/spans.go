package telemetry

// Span names used by the game service.
const (
	SpanOpen     = "session.open"
	SpanMove     = "session.move"
	SpanPosition = "session.position"
	SpanTake     = "session.take"
	SpanDeposit  = "session.deposit"
	SpanReset    = "session.reset"
)

// TracerName identifies spans emitted by this module.
const TracerName = "github.com/samirrijal/geocoin"
