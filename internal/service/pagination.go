package service

const (
	// DefaultPageSize applies when the client sends no limit.
	DefaultPageSize = 20

	// MaxPageSize caps the per-page row count regardless of the request.
	MaxPageSize = 50
)

func clampPageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
