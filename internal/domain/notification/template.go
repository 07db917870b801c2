package notification

import (
	"fmt"
	"sort"
	"strings"
)

// ApproverRoles 审批类通知的接收角色
var ApproverRoles = []string{"admin", "manager", "approver"}

// TemplateVars 模板变量
type TemplateVars map[string]any

// str 读取字符串变量，缺失返回空串
func (v TemplateVars) str(key string) string {
	if v == nil {
		return ""
	}
	val, ok := v[key]
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

// pick 复制指定键到 metadata
func (v TemplateVars) pick(keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := v[k]; ok {
			out[k] = val
		}
	}
	return out
}

type templateFunc func(vars TemplateVars) Content

var templates = map[string]templateFunc{
	"timesheet.submitted": func(v TemplateVars) Content {
		return timesheetContent(v, "Timesheet Submitted",
			fmt.Sprintf("Timesheet for week of %s has been submitted for approval.", v.str("weekStartDate")),
			TypeInfo, "timesheet", PriorityMedium, "/timesheets/approval")
	},
	"timesheet.approved": func(v TemplateVars) Content {
		return timesheetContent(v, "Timesheet Approved",
			fmt.Sprintf("Your timesheet for week of %s has been approved.", v.str("weekStartDate")),
			TypeSuccess, "timesheet", PriorityMedium, "/timesheets")
	},
	"timesheet.rejected": func(v TemplateVars) Content {
		return timesheetContent(v, "Timesheet Rejected",
			fmt.Sprintf("Your timesheet for week of %s has been rejected. Please review and resubmit.", v.str("weekStartDate")),
			TypeWarning, "timesheet", PriorityHigh, "/timesheets/submit")
	},
	"timesheet.reminder": func(v TemplateVars) Content {
		return timesheetContent(v, "Timesheet Reminder",
			fmt.Sprintf("Don't forget to submit your timesheet for week of %s.", v.str("weekStartDate")),
			TypeInfo, "reminder", PriorityMedium, "/timesheets/submit")
	},
	"leave.requested": func(v TemplateVars) Content {
		return leaveContent(v, "Leave Request Submitted",
			fmt.Sprintf("Leave request for %s to %s has been submitted for approval.", v.str("startDate"), v.str("endDate")),
			TypeInfo, PriorityMedium)
	},
	"leave.approved": func(v TemplateVars) Content {
		return leaveContent(v, "Leave Request Approved",
			fmt.Sprintf("Your leave request for %s to %s has been approved.", v.str("startDate"), v.str("endDate")),
			TypeSuccess, PriorityMedium)
	},
	"leave.rejected": func(v TemplateVars) Content {
		return leaveContent(v, "Leave Request Rejected",
			fmt.Sprintf("Your leave request for %s to %s has been rejected.", v.str("startDate"), v.str("endDate")),
			TypeWarning, PriorityHigh)
	},
	"approval.timesheet": func(v TemplateVars) Content {
		return approvalContent(v, "timesheet", "Timesheet Pending Approval",
			fmt.Sprintf("%s has submitted a timesheet for week of %s and is waiting for your approval.",
				v.str("employeeName"), v.str("weekStartDate")),
			"/timesheets/approval")
	},
	"approval.leave": func(v TemplateVars) Content {
		return approvalContent(v, "leave", "Leave Request Pending Approval",
			fmt.Sprintf("%s has submitted a leave request for %s to %s and is waiting for your approval.",
				v.str("employeeName"), v.str("startDate"), v.str("endDate")),
			"/leave-management")
	},
}

func timesheetContent(v TemplateVars, title, message string, typ Type, category string, priority Priority, actionURL string) Content {
	return Content{
		Title:     title,
		Message:   message,
		Type:      typ,
		Category:  category,
		Priority:  priority,
		ActionURL: actionURL,
		Metadata:  v.pick("timesheetId", "employeeId", "weekStartDate", "weekEndDate"),
	}
}

func leaveContent(v TemplateVars, title, message string, typ Type, priority Priority) Content {
	return Content{
		Title:     title,
		Message:   message,
		Type:      typ,
		Category:  "leave",
		Priority:  priority,
		ActionURL: "/leave-management",
		Metadata:  v.pick("leaveRequestId", "employeeId", "startDate", "endDate", "leaveType"),
	}
}

func approvalContent(v TemplateVars, approvalType, title, message, actionURL string) Content {
	metadata := make(map[string]any, len(v)+1)
	for k, val := range v {
		metadata[k] = val
	}
	metadata["approvalType"] = approvalType
	return Content{
		Title:     title,
		Message:   message,
		Type:      TypeInfo,
		Category:  "approval",
		Priority:  PriorityMedium,
		ActionURL: actionURL,
		Metadata:  metadata,
	}
}

// RenderTemplate 按名称渲染模板
func RenderTemplate(name string, vars TemplateVars) (Content, error) {
	fn, ok := templates[name]
	if !ok {
		return Content{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return fn(vars), nil
}

// IsApprovalTemplate 审批模板默认发送给审批角色
func IsApprovalTemplate(name string) bool {
	return strings.HasPrefix(name, "approval.")
}

// TemplateNames 返回所有模板名称（已排序）
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
