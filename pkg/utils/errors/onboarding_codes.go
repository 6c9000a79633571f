package errors

// 入职助手服务错误码: 30
// 错误码格式: AABBCCC
// - AA: 30 (Onboarding 服务)
// - BB: 类别代码
// - CCC: 序号

var (
	// 请求参数错误 (类别 01)
	ErrInvalidChunkParams = NewRequestErr(ServiceOnboarding, 1, "Invalid chunk window or overlap", "分块窗口或重叠参数无效")
	ErrDocumentExtract    = NewRequestErr(ServiceOnboarding, 2, "Document text extraction failed", "文档文本提取失败")
	ErrInvalidTaskStatus  = NewRequestErr(ServiceOnboarding, 3, "Invalid task status", "任务状态无效")
	ErrEmptyQuestion      = NewRequestErr(ServiceOnboarding, 4, "Question is required", "问题不能为空")

	// 资源不存在 (类别 04)
	ErrEmployeeNotFound = NewNotFoundErr(ServiceOnboarding, 1, "Employee not found", "员工不存在")
	ErrDocumentNotFound = NewNotFoundErr(ServiceOnboarding, 2, "Document not found", "文档不存在")
	ErrPlanNotFound     = NewNotFoundErr(ServiceOnboarding, 3, "Onboarding plan not found", "入职计划不存在")
	ErrTaskNotFound     = NewNotFoundErr(ServiceOnboarding, 4, "Checklist task not found", "任务不存在")
	ErrReminderNotFound = NewNotFoundErr(ServiceOnboarding, 5, "Reminder not found", "提醒不存在")

	// 冲突 (类别 05)
	ErrEmployeeExists = NewConflictErr(ServiceOnboarding, 1, "Employee already exists", "员工已存在").Terminal()
	ErrPlanConflict   = NewConflictErr(ServiceOnboarding, 2, "Concurrent plan generation for employee", "该员工的计划正在被并发生成")
	ErrDocumentExists = NewConflictErr(ServiceOnboarding, 3, "Document already exists", "文档已存在").Terminal()

	// 限流 (类别 06)
	ErrIngestionBusy = NewRateLimitErr(ServiceOnboarding, 1, "Ingestion queue is full", "文档导入队列已满")

	// 内部错误 (类别 07)
	ErrAnswerGenerationFailed  = NewInternalErr(ServiceOnboarding, 1, "Answer generation failed", "答案生成失败")
	ErrPlanParseFailed         = NewInternalErr(ServiceOnboarding, 2, "Plan response did not match the expected format", "计划响应格式不符合预期").Terminal()
	ErrIngestionPartialFailure = NewInternalErr(ServiceOnboarding, 3, "Document ingestion partially failed", "文档部分导入失败")
	ErrIngestionFailed         = NewInternalErr(ServiceOnboarding, 4, "Document ingestion failed", "文档导入失败")
	ErrPlanGenerationFailed    = NewInternalErr(ServiceOnboarding, 5, "Plan generation failed", "计划生成失败")

	// 网络错误 (类别 10)
	ErrIndexUnavailable = NewNetworkErr(ServiceOnboarding, 1, "Vector index unavailable", "向量索引不可用")
)

// 补全服务 (CompletionServiceError) 错误: 94
var (
	ErrCompletionAuth        = NewAuthErr(ServiceThirdPartyLLM, 1, "Completion service rejected credentials", "补全服务认证失败")
	ErrCompletionRateLimited = NewRateLimitErr(ServiceThirdPartyLLM, 1, "Completion service rate limited", "补全服务触发限流")
	ErrCompletionBadResponse = NewInternalErr(ServiceThirdPartyLLM, 1, "Completion service returned a malformed response", "补全服务返回格式错误").Terminal()
	ErrCompletionUnavailable = NewNetworkErr(ServiceThirdPartyLLM, 1, "Completion service unavailable", "补全服务不可用")
	ErrCompletionTimeout     = NewTimeoutErr(ServiceThirdPartyLLM, 1, "Completion service timed out", "补全服务超时")
	ErrCompletionRejected    = NewRequestErr(ServiceThirdPartyLLM, 1, "Completion service rejected the request", "补全服务拒绝请求")
)

// IsCompletionError reports whether err carries a completion service failure.
func IsCompletionError(err error) bool {
	for _, e := range chain(err) {
		if e.Code/100000 == ServiceThirdPartyLLM {
			return true
		}
	}
	return false
}
