package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// LetterData carries the fields rendered into an assignment letter.
type LetterData struct {
	RecipientName string
	TaskTitle     string
	TaskCategory  string
	ScheduleID    string
	ScheduleType  string
	Date          time.Time
	EndDate       *time.Time
	StartTime     *time.Time
	EndTime       *time.Time
	Priority      string
	Location      string
	Notes         string
}

var letterTemplate = template.Must(template.New("assignment-letter").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Task Assignment</h2>
  <p>Hello {{.RecipientName}},</p>
  <p>You have been assigned to the following task:</p>
  <table cellpadding="4">
    <tr><td><strong>Task</strong></td><td>{{.TaskTitle}}</td></tr>
    {{- if .TaskCategory}}
    <tr><td><strong>Category</strong></td><td>{{.TaskCategory}}</td></tr>
    {{- end}}
    <tr><td><strong>Schedule</strong></td><td>{{.ScheduleID}}</td></tr>
    <tr><td><strong>Date</strong></td><td>{{.DateLine}}</td></tr>
    {{- if .TimeLine}}
    <tr><td><strong>Time</strong></td><td>{{.TimeLine}}</td></tr>
    {{- end}}
    <tr><td><strong>Priority</strong></td><td>{{.Priority}}</td></tr>
    {{- if .Location}}
    <tr><td><strong>Location</strong></td><td>{{.Location}}</td></tr>
    {{- end}}
  </table>
  {{- if .Notes}}
  <p>{{.Notes}}</p>
  {{- end}}
  <p>Please confirm your availability through the dashboard.</p>
</body>
</html>
`))

type letterView struct {
	LetterData
	DateLine string
	TimeLine string
}

// RenderAssignmentLetter produces the HTML body for one recipient.
func RenderAssignmentLetter(data LetterData) (string, error) {
	view := letterView{
		LetterData: data,
		DateLine:   formatDateLine(data.Date, data.EndDate),
		TimeLine:   formatTimeLine(data.StartTime, data.EndTime),
	}

	var b strings.Builder
	if err := letterTemplate.Execute(&b, view); err != nil {
		return "", fmt.Errorf("mail: failed to render assignment letter: %w", err)
	}
	return b.String(), nil
}

// AssignmentSubject builds the subject line for an assignment letter.
func AssignmentSubject(taskTitle string, date time.Time) string {
	return fmt.Sprintf("Task assignment: %s (%s)", taskTitle, date.Format("2006-01-02"))
}

func formatDateLine(date time.Time, endDate *time.Time) string {
	if endDate != nil && !endDate.Equal(date) {
		return fmt.Sprintf("%s to %s", date.Format("Mon, 02 Jan 2006"), endDate.Format("Mon, 02 Jan 2006"))
	}
	return date.Format("Mon, 02 Jan 2006")
}

func formatTimeLine(start, end *time.Time) string {
	if start == nil || end == nil {
		return ""
	}
	return fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04"))
}
