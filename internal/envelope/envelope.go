// Package envelope defines the {success, data|error} result returned by
// every storefront adapter.
package envelope

import "encoding/json"

type Result[T any] struct {
	Success bool
	Data    T
	Error   string
}

func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](msg string) Result[T] {
	return Result[T]{Error: msg}
}

// FromError fails with err's message, or fallback when it has none.
func FromError[T any](err error, fallback string) Result[T] {
	if err == nil || err.Error() == "" {
		return Fail[T](fallback)
	}
	return Fail[T](err.Error())
}

// Recast carries a failure over to a result of another type.
func Recast[U, T any](r Result[T]) Result[U] {
	return Result[U]{Success: r.Success, Error: r.Error}
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Data    T    `json:"data"`
		}{true, r.Data})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{false, r.Error})
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Success, r.Error = raw.Success, raw.Error
	if len(raw.Data) > 0 {
		return json.Unmarshal(raw.Data, &r.Data)
	}
	return nil
}
