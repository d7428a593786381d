package statemachine

import "fmt"

// registry 状态 -> 合法后继状态
// 终态（cancelled, rejected）没有后继
var registry = map[Status][]Status{
	StatusSubmitted:    {StatusAcknowledged, StatusCancelled, StatusRejected},
	StatusAcknowledged: {StatusScheduled, StatusApproved, StatusCancelled, StatusRejected},
	StatusApproved:     {StatusScheduled, StatusCancelled},
	StatusScheduled:    {StatusInProgress, StatusCancelled, StatusOnHold},
	StatusInProgress:   {StatusCompleted, StatusCancelled, StatusOnHold},
	StatusOnHold:       {StatusScheduled, StatusInProgress, StatusCancelled},
	StatusCompleted:    {StatusCancelled},
	StatusCancelled:    {},
	StatusRejected:     {},
}

// approvableFrom Approve 允许的源状态
var approvableFrom = map[Status]struct{}{
	StatusSubmitted:    {},
	StatusAcknowledged: {},
}

// InvalidTransitionError 非法状态迁移
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Invalid status transition from %s to %s", e.From, e.To)
}

// Validate 校验状态迁移,合法时返回 nil
func Validate(from, to Status) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// CanTransition 检查状态迁移是否合法
func CanTransition(from, to Status) bool {
	for _, next := range registry[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions 返回合法后继状态（副本）
func AllowedTransitions(from Status) []Status {
	next := registry[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// IsTerminal 判断是否为终态
func IsTerminal(s Status) bool {
	next, ok := registry[s]
	return ok && len(next) == 0
}

// CanApprove 判断该状态下是否可以审批
func CanApprove(s Status) bool {
	_, ok := approvableFrom[s]
	return ok
}

// PromoteOnAssignment 分配供应商时的状态提升
//
// submitted 的工单分配供应商后直接进入 scheduled,不经过 acknowledged。
// 这是注册表之外唯一的状态变更路径;其他状态保持不变。
func PromoteOnAssignment(from Status) (Status, bool) {
	if from == StatusSubmitted {
		return StatusScheduled, true
	}
	return from, false
}

// DateField 进入某状态时需要打上的时间戳字段
type DateField string

const (
	DateAcknowledged DateField = "acknowledged_date"
	DateScheduled    DateField = "scheduled_date"
	DateStarted      DateField = "started_date"
	DateCompleted    DateField = "completed_date"
)

var dateFields = map[Status]DateField{
	StatusAcknowledged: DateAcknowledged,
	StatusScheduled:    DateScheduled,
	StatusInProgress:   DateStarted,
	StatusCompleted:    DateCompleted,
}

// DateFieldFor 返回进入状态 to 时应设置的日期字段
func DateFieldFor(to Status) (DateField, bool) {
	f, ok := dateFields[to]
	return f, ok
}
