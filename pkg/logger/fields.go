package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// Field types for structured logging.
type Field interface {
	AddTo(event *zerolog.Event)
}

type StringField struct {
	Key   string
	Value string
}

func (f StringField) AddTo(event *zerolog.Event) {
	event.Str(f.Key, f.Value)
}

type StringsField struct {
	Key    string
	Values []string
}

func (f StringsField) AddTo(event *zerolog.Event) {
	event.Strs(f.Key, f.Values)
}

type IntField struct {
	Key   string
	Value int
}

func (f IntField) AddTo(event *zerolog.Event) {
	event.Int(f.Key, f.Value)
}

type Float64Field struct {
	Key   string
	Value float64
}

func (f Float64Field) AddTo(event *zerolog.Event) {
	event.Float64(f.Key, f.Value)
}

type DurationField struct {
	Key   string
	Value time.Duration
}

func (f DurationField) AddTo(event *zerolog.Event) {
	event.Dur(f.Key, f.Value)
}

type ErrorField struct {
	Value error
}

func (f ErrorField) AddTo(event *zerolog.Event) {
	event.Err(f.Value)
}

type AnyField struct {
	Key   string
	Value interface{}
}

func (f AnyField) AddTo(event *zerolog.Event) {
	event.Interface(f.Key, f.Value)
}

// --- Field constructors ---

func String(key, value string) Field {
	return StringField{Key: key, Value: value}
}

func Strings(key string, values []string) Field {
	return StringsField{Key: key, Values: values}
}

func Int(key string, value int) Field {
	return IntField{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Float64Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return DurationField{Key: key, Value: value}
}

func Error(err error) Field {
	return ErrorField{Value: err}
}

func Any(key string, value interface{}) Field {
	return AnyField{Key: key, Value: value}
}
