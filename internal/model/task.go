package model

import (
	"fmt"
	"strings"
)

// Kind is the production process a task belongs to. It only drives color.
type Kind string

const (
	KindStoryboard  Kind = "storyboard"
	KindLayout      Kind = "layout"
	KindAnimation   Kind = "animation"
	KindBackground  Kind = "background"
	KindColoring    Kind = "coloring"
	KindCompositing Kind = "compositing"
	KindEditing     Kind = "editing"
)

// Kinds lists the closed set in pipeline order.
func Kinds() []Kind {
	return []Kind{
		KindStoryboard,
		KindLayout,
		KindAnimation,
		KindBackground,
		KindColoring,
		KindCompositing,
		KindEditing,
	}
}

// Studio sheets are usually written with the Japanese process names.
var kindAliases = map[string]Kind{
	"絵コンテ":    KindStoryboard,
	"レイアウト":   KindLayout,
	"アニメーション": KindAnimation,
	"背景":      KindBackground,
	"彩色":      KindColoring,
	"コンポジット":  KindCompositing,
	"編集":      KindEditing,
}

func (k Kind) Valid() bool {
	for _, x := range Kinds() {
		if k == x {
			return true
		}
	}
	return false
}

// ParseKind accepts the canonical names (case-insensitive) and the Japanese aliases.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	k := Kind(strings.ToLower(s))
	if !k.Valid() {
		return "", fmt.Errorf("unknown kind: %q", s)
	}
	return k, nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

type Task struct {
	ID        string `json:"id" yaml:"id"`
	GroupKey  string `json:"groupKey" yaml:"groupKey"`
	Kind      Kind   `json:"kind" yaml:"kind"`
	StartDate Date   `json:"startDate" yaml:"startDate"`
	EndDate   Date   `json:"endDate" yaml:"endDate"`
}

// Ordered reports whether the task satisfies start <= end.
func (t Task) Ordered() bool {
	return !t.EndDate.Before(t.StartDate)
}

// Days is the inclusive length of the task in calendar days.
func (t Task) Days() int {
	return t.EndDate.DaysSince(t.StartDate) + 1
}

// Gesture is the kind of edit a drag session performs.
type Gesture string

const (
	GestureMove        Gesture = "move"
	GestureResizeStart Gesture = "resize-start"
	GestureResizeEnd   Gesture = "resize-end"
)

func (g Gesture) Valid() bool {
	switch g {
	case GestureMove, GestureResizeStart, GestureResizeEnd:
		return true
	default:
		return false
	}
}

func ParseGesture(s string) (Gesture, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "move":
		return GestureMove, nil
	case "resize-start", "resize-left", "start":
		return GestureResizeStart, nil
	case "resize-end", "resize-right", "end":
		return GestureResizeEnd, nil
	default:
		return "", fmt.Errorf("unknown gesture: %q (want move|resize-start|resize-end)", s)
	}
}
