package domain

import "fmt"

type KeepID = int

// Alliance 是阵营编号，0 表示中立。
type Alliance = int

const Neutral Alliance = 0

type TroopType uint8

const (
	Archer TroopType = iota
	Warrior

	troopTypeCount
)

// BreachOrder 是守军迎战顺序：战士在前。
var BreachOrder = [troopTypeCount]TroopType{Warrior, Archer}

func (t TroopType) String() string {
	switch t {
	case Archer:
		return "archer"
	case Warrior:
		return "warrior"
	default:
		return fmt.Sprintf("troop(%d)", uint8(t))
	}
}

func (t TroopType) Valid() bool {
	return t < troopTypeCount
}

// ParseTroopType 解析 "archer"/"warrior"，空串返回 nil 表示两种兵种都派。
func ParseTroopType(s string) (*TroopType, error) {
	switch s {
	case "":
		return nil, nil
	case "archer":
		t := Archer
		return &t, nil
	case "warrior":
		t := Warrior
		return &t, nil
	default:
		return nil, ErrInvalidTroopType.WithData("troop_type", s)
	}
}
