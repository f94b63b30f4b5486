package dag

import (
	"github.com/robfig/cron/v3"
	"github.com/vk/gridflow/internal/config"
	"github.com/vk/gridflow/internal/fields"
	"github.com/vk/gridflow/internal/nodeid"
)

// Kind is the resolved variant of a Node.
type Kind int

const (
	KindManual Kind = iota
	KindSchedule
	KindWebhook
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindManual:
		return "manual"
	case KindSchedule:
		return "schedule"
	case KindWebhook:
		return "webhook"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// IsTrigger reports whether nodes of this kind are graph roots.
func (k Kind) IsTrigger() bool { return k != KindAction }

// ScheduleRef is a validated cron schedule.
type ScheduleRef struct {
	Expr     string
	Schedule cron.Schedule
}

// HookRef is a webhook binding. Definition is nil when the hook was allowed
// to stay unresolved.
type HookRef struct {
	ID         string
	Definition *config.HookDefinition
}

// TaskRef names the task an action dispatches and the static inputs it was
// compiled with, defaults applied and converted to the declared types.
type TaskRef struct {
	Name   string
	Inputs fields.Fields
}

// Node is a lowered graph node. Exactly one of Schedule, Hook or Task is set
// for the schedule, webhook and action kinds; manual triggers carry none.
type Node struct {
	Priority uint32
	InputID  nodeid.NodeID
	Kind     Kind
	Schedule *ScheduleRef
	Hook     *HookRef
	Task     *TaskRef
}

// Edge is a lowered directed edge from Tail to Head.
type Edge struct {
	InputID nodeid.EdgeID
	Tail    int
	Head    int
	Offset  int32
}
