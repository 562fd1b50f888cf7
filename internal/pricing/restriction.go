package pricing

import "encoding/json"

type restrictionKind uint8

const (
	restrictionWildcard restrictionKind = iota
	restrictionRestricted
)

// Restriction 分类对配送方式的限制：Wildcard（不限制）或 Restricted（限定集合）
// 零值为 Wildcard。空集合不表示“无可用方式”，而是不限制。
type Restriction struct {
	kind restrictionKind
	ids  map[uint]struct{}
}

// Wildcard 不限制配送方式
func Wildcard() Restriction {
	return Restriction{kind: restrictionWildcard}
}

// Restricted 限定到给定配送方式；ids 为空时退化为 Wildcard
func Restricted(ids ...uint) Restriction {
	if len(ids) == 0 {
		return Wildcard()
	}
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Restriction{kind: restrictionRestricted, ids: set}
}

// IsWildcard 是否不限制
func (r Restriction) IsWildcard() bool {
	return r.kind == restrictionWildcard
}

// Allows 是否允许指定配送方式
func (r Restriction) Allows(methodID uint) bool {
	if r.IsWildcard() {
		return true
	}
	_, ok := r.ids[methodID]
	return ok
}

// MethodIDs 返回限定集合（升序），Wildcard 返回 nil
func (r Restriction) MethodIDs() []uint {
	if r.IsWildcard() {
		return nil
	}
	return sortedIDs(r.ids)
}

// narrowTo 只保留 keep 中的方式
func (r Restriction) narrowTo(keep map[uint]struct{}) Restriction {
	if r.IsWildcard() {
		return r
	}
	ids := make([]uint, 0, len(r.ids))
	for id := range r.ids {
		if _, ok := keep[id]; ok {
			ids = append(ids, id)
		}
	}
	return Restricted(ids...)
}

type restrictionJSON struct {
	Wildcard  bool   `json:"wildcard"`
	MethodIDs []uint `json:"method_ids,omitempty"`
}

// MarshalJSON 序列化为 {"wildcard":true} 或 {"wildcard":false,"method_ids":[...]}
func (r Restriction) MarshalJSON() ([]byte, error) {
	return json.Marshal(restrictionJSON{
		Wildcard:  r.IsWildcard(),
		MethodIDs: r.MethodIDs(),
	})
}

// UnmarshalJSON 反序列化
func (r *Restriction) UnmarshalJSON(b []byte) error {
	var payload restrictionJSON
	if err := json.Unmarshal(b, &payload); err != nil {
		return err
	}
	if payload.Wildcard {
		*r = Wildcard()
		return nil
	}
	*r = Restricted(payload.MethodIDs...)
	return nil
}
