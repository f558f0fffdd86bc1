package domain

import "Strongholds/modules/kit/errx"

// 指令被拒绝时返回的业务错误，不带堆栈。
var (
	ErrUnknownKeep      = errx.NewBiz("CMD_UNKNOWN_KEEP", "城堡不存在")
	ErrSameKeep         = errx.NewBiz("CMD_SAME_KEEP", "出发与目标是同一座城堡")
	ErrNoRoute          = errx.NewBiz("CMD_NO_ROUTE", "两座城堡之间没有路径")
	ErrInvalidPercent   = errx.NewBiz("CMD_INVALID_PERCENT", "派兵比例必须在 (0,1] 之间")
	ErrInvalidTroopType = errx.NewBiz("CMD_INVALID_TROOP_TYPE", "兵种不存在")
	ErrNotOwner         = errx.NewBiz("CMD_NOT_OWNER", "不属于发令方阵营")
	ErrNeutralSource    = errx.NewBiz("CMD_NEUTRAL_SOURCE", "中立城堡不能派兵")
	ErrNotResource      = errx.NewBiz("CMD_NOT_RESOURCE", "该格不是资源格")
	ErrResourceNotRipe  = errx.NewBiz("CMD_RESOURCE_NOT_RIPE", "资源尚未成熟")
	ErrInvalidAlliance  = errx.NewBiz("CMD_INVALID_ALLIANCE", "阵营编号无效")
	ErrMatchOver        = errx.NewBiz("CMD_MATCH_OVER", "比赛已结束")
	ErrUnknownCommand   = errx.NewBiz("CMD_UNKNOWN", "未知指令")
)
