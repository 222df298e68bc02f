package queue

type Service interface {
	Add(interface{}) error
	Consume() interface{}
	Len() int
	// TryConsuming marks the queue as being drained. It returns false when
	// another consumer is already draining it.
	TryConsuming() bool
	DoneConsuming()
}
