// Package result определяет размеченный результат операции фасада API:
// успех со значением, ошибка с сообщением и опциональным HTTP-статусом,
// либо состояние загрузки. Состояния взаимоисключающие по построению.
package result

// Kind дискриминант результата.
type Kind int

const (
	// KindSuccess операция завершилась успешно, значение доступно.
	KindSuccess Kind = iota
	// KindError операция завершилась ошибкой, доступно сообщение.
	KindError
	// KindLoading операция ещё выполняется.
	KindLoading
)

// Result размеченный результат операции.
// Нулевое значение — успех с нулевым значением T; конструировать
// результаты следует только через Success, Failure и Loading.
type Result[T any] struct {
	kind    Kind
	value   T
	message string
	status  int
}

// Success возвращает успешный результат со значением v.
func Success[T any](v T) Result[T] {
	return Result[T]{kind: KindSuccess, value: v}
}

// Failure возвращает результат-ошибку. status — HTTP-статус ответа,
// 0 означает отсутствие статуса (транспортная ошибка).
func Failure[T any](message string, status int) Result[T] {
	return Result[T]{kind: KindError, message: message, status: status}
}

// Loading возвращает результат "операция выполняется".
func Loading[T any]() Result[T] {
	return Result[T]{kind: KindLoading}
}

// Kind возвращает дискриминант результата.
func (r Result[T]) Kind() Kind { return r.kind }

// IsSuccess сообщает, успешен ли результат.
func (r Result[T]) IsSuccess() bool { return r.kind == KindSuccess }

// IsError сообщает, является ли результат ошибкой.
func (r Result[T]) IsError() bool { return r.kind == KindError }

// IsLoading сообщает, выполняется ли ещё операция.
func (r Result[T]) IsLoading() bool { return r.kind == KindLoading }

// Value возвращает значение успешного результата.
// Для прочих состояний возвращается нулевое значение T.
func (r Result[T]) Value() T { return r.value }

// Message возвращает сообщение об ошибке ("" для прочих состояний).
func (r Result[T]) Message() string { return r.message }

// StatusCode возвращает HTTP-статус ошибки, 0 если статуса нет.
func (r Result[T]) StatusCode() int { return r.status }
