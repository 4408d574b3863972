package approval

import (
	"fmt"

	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/service/notification"
)

// Notice texts are stable for a given request and level so repeats deduplicate.

func awaitingApproval(a *model.LeaveApproval, level *model.ApprovalLevel, approverID string, link *string) notification.Draft {
	requestID := a.RequestID
	return notification.Draft{
		RecipientUserID: &approverID,
		RequestID:       &requestID,
		Type:            model.NotificationSubmitted,
		Title:           "Leave request awaiting your approval",
		Message: fmt.Sprintf("Leave request %s from %s%s awaits your level %d (%s) approval.",
			a.RequestID, a.RequesterID, leaveSummary(a.Leave), level.LevelNumber, level.ApproverRole),
		Link:     link,
		Priority: model.PriorityNormal,
	}
}

func decisionNotice(a *model.LeaveApproval, level *model.ApprovalLevel, link *string) *notification.Draft {
	requesterID := a.RequesterID
	requestID := a.RequestID

	d := notification.Draft{
		RecipientUserID:  &requesterID,
		RecipientStaffID: staffID(a.Leave),
		RequestID:        &requestID,
		Type:             model.NotificationDecision,
		Link:             link,
	}

	switch a.Status {
	case model.ApprovalRejected:
		d.Title = "Leave request rejected"
		d.Message = fmt.Sprintf("Your leave request %s was rejected at level %d (%s).",
			a.RequestID, level.LevelNumber, level.ApproverRole)
		if level.Comments != nil && *level.Comments != "" {
			d.Message = fmt.Sprintf("%s Comments: %s", d.Message, *level.Comments)
		}
		d.Priority = model.PriorityHigh
	default:
		d.Title = "Leave request approved"
		d.Message = fmt.Sprintf("Your leave request %s has been approved at all %d levels.",
			a.RequestID, len(a.Levels))
		d.Priority = model.PriorityNormal
	}

	return &d
}

func cancelledNotice(a *model.LeaveApproval, approverID string, link *string) notification.Draft {
	requestID := a.RequestID
	return notification.Draft{
		RecipientUserID: &approverID,
		RequestID:       &requestID,
		Type:            model.NotificationCancelled,
		Title:           "Leave request cancelled",
		Message:         fmt.Sprintf("Leave request %s from %s was cancelled by the requester.", a.RequestID, a.RequesterID),
		Link:            link,
		Priority:        model.PriorityLow,
	}
}

func leaveSummary(l model.LeaveDetails) string {
	switch {
	case l.LeaveType != "" && l.Days > 0:
		return fmt.Sprintf(" (%s, %d days)", l.LeaveType, l.Days)
	case l.LeaveType != "":
		return fmt.Sprintf(" (%s)", l.LeaveType)
	default:
		return ""
	}
}

func staffID(l model.LeaveDetails) *string {
	if l.StaffID == "" {
		return nil
	}
	id := l.StaffID
	return &id
}
