package apierrors

const (
	MsgInvalidTaskID      = "invalidTaskID"
	MsgInvalidTaskPayload = "invalidTaskPayload"
	MsgInvalidQuery       = "invalidQuery"
	MsgTaskNotFound       = "taskNotFound"
	MsgFailCreateTask     = "failCreateTask"
	MsgFailGetTask        = "failGetTask"
	MsgFailListTasks      = "failListTasks"
	MsgFailUpdateTask     = "failUpdateTask"
	MsgFailDeleteTask     = "failDeleteTask"
)
