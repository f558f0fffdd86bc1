package entity

import (
	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/match/entity/geom"
)

// Command 是外部意图。所有指令先入队，在下一个 tick 开始、任何实体更新之前按入队顺序执行。
type Command interface {
	CommandName() string
}

// IssueDeploymentOrder 让 Source 向 Target 派出 Percent 比例的守军，Type 为 nil 表示两种兵种都派。
// Issuer 为 0 表示内部可信来源，不校验阵营。
type IssueDeploymentOrder struct {
	Issuer  domain.Alliance   `json:"issuer" msgpack:"issuer"`
	Source  domain.KeepID     `json:"source" msgpack:"source"`
	Target  domain.KeepID     `json:"target" msgpack:"target"`
	Type    *domain.TroopType `json:"type,omitempty" msgpack:"type,omitempty"`
	Percent float64           `json:"percent" msgpack:"percent"`
}

func (IssueDeploymentOrder) CommandName() string { return "issue_deployment_order" }

// HarvestResource 收获一块成熟的资源格，奖励给该格领土所属的城堡。
type HarvestResource struct {
	Issuer domain.Alliance `json:"issuer" msgpack:"issuer"`
	Cell   geom.Cell       `json:"cell" msgpack:"cell"`
}

func (HarvestResource) CommandName() string { return "harvest_resource" }

// ResetAlliance 在玩家断线时清除其阵营：城堡变中立，在途士兵移除。
type ResetAlliance struct {
	Alliance domain.Alliance `json:"alliance" msgpack:"alliance"`
}

func (ResetAlliance) CommandName() string { return "reset_alliance" }

// CommandResult 是一条指令的执行结果。
type CommandResult struct {
	Seq     uint64
	Tick    uint64
	Command Command
	Err     error
}

type pendingCommand struct {
	seq uint64
	cmd Command
}

// Enqueue 把指令加入待执行队列，返回其序号。
func (s *Simulation) Enqueue(cmd Command) uint64 {
	s.seq++
	s.pending = append(s.pending, pendingCommand{seq: s.seq, cmd: cmd})
	return s.seq
}

// Pending 返回尚未执行的指令数。
func (s *Simulation) Pending() int {
	return len(s.pending)
}

func (s *Simulation) drain() []CommandResult {
	if len(s.pending) == 0 {
		return nil
	}
	queue := s.pending
	s.pending = nil
	results := make([]CommandResult, 0, len(queue))
	for _, p := range queue {
		results = append(results, CommandResult{
			Seq:     p.seq,
			Tick:    s.tick,
			Command: p.cmd,
			Err:     s.apply(p.cmd),
		})
	}
	return results
}

func (s *Simulation) apply(cmd Command) error {
	if s.over {
		return domain.ErrMatchOver
	}
	switch c := cmd.(type) {
	case IssueDeploymentOrder:
		return s.issueDeploymentOrder(c)
	case HarvestResource:
		return s.harvest(c)
	case ResetAlliance:
		return s.resetAlliance(c)
	default:
		return domain.ErrUnknownCommand.WithData("command", cmd)
	}
}

func (s *Simulation) issueDeploymentOrder(c IssueDeploymentOrder) error {
	src, ok := s.Keep(c.Source)
	if !ok {
		return domain.ErrUnknownKeep.WithData("keep_id", c.Source)
	}
	if _, ok := s.Keep(c.Target); !ok {
		return domain.ErrUnknownKeep.WithData("keep_id", c.Target)
	}
	if c.Source == c.Target {
		return domain.ErrSameKeep.WithData("keep_id", c.Source)
	}
	if src.Alliance == domain.Neutral {
		return domain.ErrNeutralSource.WithData("keep_id", c.Source)
	}
	if c.Issuer != domain.Neutral && c.Issuer != src.Alliance {
		return domain.ErrNotOwner.WithDataMap(map[string]any{
			"keep_id":  c.Source,
			"issuer":   c.Issuer,
			"alliance": src.Alliance,
		})
	}
	if !s.paths.Reachable(c.Source, c.Target) {
		return domain.ErrNoRoute.WithDataMap(map[string]any{
			"source": c.Source,
			"target": c.Target,
		})
	}
	return src.SetDeploymentOrder(c.Target, c.Type, c.Percent)
}

func (s *Simulation) harvest(c HarvestResource) error {
	r := s.resourceAt(c.Cell)
	if r == nil {
		return domain.ErrNotResource.WithData("cell", c.Cell)
	}
	if !r.ripe {
		return domain.ErrResourceNotRipe.WithData("cell", c.Cell)
	}
	keepID, ok := s.owners.Owner(c.Cell)
	if !ok {
		return domain.ErrNotOwner.WithData("cell", c.Cell)
	}
	k, _ := s.Keep(keepID)
	if k.Alliance == domain.Neutral || (c.Issuer != domain.Neutral && c.Issuer != k.Alliance) {
		return domain.ErrNotOwner.WithDataMap(map[string]any{
			"cell":     c.Cell,
			"keep_id":  keepID,
			"issuer":   c.Issuer,
			"alliance": k.Alliance,
		})
	}

	k.Reinforce(k.Native, 1)
	r.ripe = false
	r.timer = s.rules.ResourceGrowTime
	s.emit(domain.ResourceHarvested{Cell: c.Cell, KeepID: keepID, Alliance: k.Alliance})
	return nil
}

func (s *Simulation) resetAlliance(c ResetAlliance) error {
	if c.Alliance <= domain.Neutral {
		return domain.ErrInvalidAlliance.WithData("alliance", c.Alliance)
	}
	for _, k := range s.arena.keeps {
		if k.Alliance == c.Alliance {
			k.Neutralize()
		}
	}
	for _, id := range s.arena.soldierIDs() {
		if e := s.arena.get(id); e != nil && e.Soldier.Alliance == c.Alliance {
			s.removeSoldier(id)
		}
	}
	return nil
}
