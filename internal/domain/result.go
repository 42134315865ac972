package domain

// Failure pairs a rejected input with a human-readable reason.
type Failure[T any] struct {
	Input  T      `json:"input"`
	Reason string `json:"reason"`
}

// Outcome is the result of a best-effort batch: each input lands in exactly one list.
type Outcome[T any] struct {
	Succeeded []T          `json:"succeeded"`
	Failed    []Failure[T] `json:"failed"`
}

func (o *Outcome[T]) Succeed(v T) { o.Succeeded = append(o.Succeeded, v) }

func (o *Outcome[T]) Fail(v T, reason string) {
	o.Failed = append(o.Failed, Failure[T]{Input: v, Reason: reason})
}
