package handler

import (
	"context"
	"errors"

	"Strongholds/internal/match/actor"
	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/match/service"
	"Strongholds/internal/shared/transport"
	"Strongholds/modules/kit/errx"
	"Strongholds/modules/kit/logx"

	"github.com/golang-jwt/jwt/v5"
)

const busyMessage = "系统繁忙，请稍后重试"

// HandleError 把错误映射成客户端业务码和文案，并按业务拒绝或系统错误各记一次日志。
func HandleError(ctx context.Context, l logx.Logger, action string, err error) (int, string) {
	if err == nil {
		return transport.OK, ""
	}

	var e *errx.Error
	if errors.As(err, &e) && e != nil {
		transport.SetErrorReason(ctx, e.CodeText())
		if e.IsBiz() {
			logx.ReportBizWithLoggerContext(ctx, l, logx.NewBizLog(action, e.CodeText(), e.Msg()))
			return bizCode(err), e.Msg()
		}
		logx.ReportSysErrorWithLoggerContext(ctx, l, logx.NewSysLog(action, err))
		if errors.Is(err, errx.ErrActorTimeout) {
			return transport.SystemError, "比赛响应超时，请稍后重试"
		}
		return transport.SystemError, busyMessage
	}

	if isTicketError(err) {
		transport.SetErrorReason(ctx, "TICKET_INVALID")
		return transport.Unauthorized, "门票无效"
	}

	// actor 层自己拒绝的请求（比赛不存在、参数为空）带着业务码返回
	var re *actor.RuntimeError
	if errors.As(err, &re) && re.Code != transport.SystemError {
		transport.SetErrorReason(ctx, re.Message)
		return re.Code, re.Message
	}

	logx.ReportSysErrorWithLoggerContext(ctx, l, logx.NewSysLog(action, err))
	return transport.SystemError, busyMessage
}

func bizCode(err error) int {
	switch {
	case errors.Is(err, entity.ErrMatchNotFound):
		return transport.NotFound
	case errors.Is(err, domain.ErrMatchOver):
		return transport.MatchOver
	case errors.Is(err, service.ErrSpectator):
		return transport.Unauthorized
	case errors.Is(err, domain.ErrInvalidTroopType),
		errors.Is(err, domain.ErrInvalidAlliance),
		errors.Is(err, domain.ErrInvalidPercent):
		return transport.InvalidParam
	default:
		return transport.CommandRejected
	}
}

func isTicketError(err error) bool {
	return errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwt.ErrTokenExpired) ||
		errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenInvalidClaims) ||
		errors.Is(err, jwt.ErrTokenNotValidYet)
}
