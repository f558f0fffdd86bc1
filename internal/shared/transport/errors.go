package transport

import (
	"errors"

	"Strongholds/modules/kit/errx"
)

// ErrorCodeText 取出推给客户端的错误码和文案，非 errx 错误一律视为内部错误。
func ErrorCodeText(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	var e *errx.Error
	if errors.As(err, &e) && e != nil {
		return e.CodeText(), e.Msg()
	}
	return errx.ErrInternal.CodeText(), errx.ErrInternal.Msg()
}
