// Package biz 提供入职助手的业务逻辑层。
//
// 组件自底向上：
//   - Chunk: 将文本切分为重叠窗口
//   - Index: 嵌入并写入/检索向量索引，失败统一报告为 ErrIndexUnavailable
//   - Ingester: 文档导入（PDF 抽取、分块、写入索引、状态记录）
//   - Answerer: 检索增强问答，附带引用
//   - PlanGenerator: 生成个性化入职计划与任务清单并事务持久化
//   - ChecklistService / EmployeeService / ReminderService: 进度、员工与提醒记录
//   - Service: 组合以上组件
package biz

// tracerName 业务层 span 的 tracer 名称。
const tracerName = "github.com/kart-io/onboarding-assistant/internal/onboarding/biz"
