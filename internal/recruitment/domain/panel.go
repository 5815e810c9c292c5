package domain

import (
	"encoding/json"
	"strings"

	"github.com/wyfcoding/jobportal/pkg/errorx"
)

// PanelRole 面试小组角色
type PanelRole string

const (
	PanelMemberRole PanelRole = "member"
	PanelChair      PanelRole = "chairperson"
	PanelSecretary  PanelRole = "secretary"
	PanelObserver   PanelRole = "observer"
)

// ParsePanelRole 空值视为 member
func ParsePanelRole(s string) (PanelRole, error) {
	r := PanelRole(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case "":
		return PanelMemberRole, nil
	case PanelMemberRole, PanelChair, PanelSecretary, PanelObserver:
		return r, nil
	}
	return "", errorx.Validation("invalid panel role", map[string]string{"role": s})
}

func (r *PanelRole) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePanelRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// PanelMember 面试小组成员
type PanelMember struct {
	InterviewID uint      `json:"interview_id"`
	UserID      uint      `json:"user_id"`
	Role        PanelRole `json:"role"`
	Name        string    `json:"name,omitempty"`
}

// DedupPanel 按 user_id 去重，同一用户以最后一次出现的角色为准，保留首次出现的顺序
func DedupPanel(members []PanelMember) []PanelMember {
	index := make(map[uint]int, len(members))
	out := make([]PanelMember, 0, len(members))
	for _, m := range members {
		if m.Role == "" {
			m.Role = PanelMemberRole
		}
		if i, ok := index[m.UserID]; ok {
			out[i].Role = m.Role
			continue
		}
		index[m.UserID] = len(out)
		out = append(out, m)
	}
	return out
}

// PanelDiff 小组成员差异
type PanelDiff struct {
	Add    []PanelMember
	Remove []uint
	Update []PanelMember
}

// Empty 无变化
func (d PanelDiff) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0 && len(d.Update) == 0
}

// DiffPanel 计算从 existing 变为 desired 所需的增删改，未变化的成员不出现在结果中
func DiffPanel(existing, desired []PanelMember) PanelDiff {
	desired = DedupPanel(desired)
	current := make(map[uint]PanelRole, len(existing))
	for _, m := range existing {
		current[m.UserID] = m.Role
	}

	var diff PanelDiff
	want := make(map[uint]struct{}, len(desired))
	for _, m := range desired {
		want[m.UserID] = struct{}{}
		role, ok := current[m.UserID]
		switch {
		case !ok:
			diff.Add = append(diff.Add, m)
		case role != m.Role:
			diff.Update = append(diff.Update, m)
		}
	}
	for _, m := range existing {
		if _, ok := want[m.UserID]; !ok {
			diff.Remove = append(diff.Remove, m.UserID)
		}
	}
	return diff
}
