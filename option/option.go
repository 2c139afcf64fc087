// Package option is the runtime companion of generated optional
// association functions.
package option

import "fmt"

type Option[T any] struct {
	Value   T
	Defined bool
}

func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Defined: true}
}

func None[T any]() Option[T] {
	return Option[T]{Defined: false}
}

func (o Option[T]) IsDefined() bool {
	return o.Defined
}

func (o Option[T]) IsEmpty() bool {
	return !o.Defined
}

func (o Option[T]) Get() T {
	if !o.Defined {
		panic("Option.Get on None")
	}
	return o.Value
}

func (o Option[T]) GetOrElse(defaultValue T) T {
	if o.Defined {
		return o.Value
	}
	return defaultValue
}

// OrElse returns o when it is defined and alternative otherwise.
func (o Option[T]) OrElse(alternative Option[T]) Option[T] {
	if o.Defined {
		return o
	}
	return alternative
}

func (o Option[T]) Filter(p func(T) bool) Option[T] {
	if o.Defined && p(o.Value) {
		return o
	}
	return None[T]()
}

func (o Option[T]) String() string {
	if !o.Defined {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.Value)
}

// Map is a function because Go methods cannot have type parameters.
func Map[T, U any](o Option[T], f func(T) U) Option[U] {
	if o.Defined {
		return Some(f(o.Value))
	}
	return None[U]()
}

func FlatMap[T, U any](o Option[T], f func(T) Option[U]) Option[U] {
	if o.Defined {
		return f(o.Value)
	}
	return None[U]()
}
