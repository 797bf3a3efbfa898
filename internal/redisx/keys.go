package redisx

import "time"

const (
	// Cart line lock: lock:cart:{product_id}:{size}:{color}
	KeyCartLineLock = "lock:cart:%d:%s:%s"

	// Order lock around tracking appends: lock:order:{order_id}
	KeyOrderLock = "lock:order:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLLock  = 10 * time.Second
	TTLDedup = 48 * time.Hour
)
