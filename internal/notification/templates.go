package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/converso-hq/converso/internal/domain"
)

var invitationHTML = template.Must(template.New("invitation").Parse(`
<p>You have been invited to join <strong>{{.TeamName}}</strong> on Converso.</p>
<p><a href="{{.InviteURL}}">Accept invitation</a></p>
`))

var statusChangeHTML = template.Must(template.New("status").Parse(`
<p>The connection <strong>{{.ConnectionName}}</strong> in team <strong>{{.TeamName}}</strong>
changed from <em>{{.OldStatus}}</em> to <em>{{.NewStatus}}</em>.</p>
`))

// InvitationEmail builds the team invitation message
func InvitationEmail(team *domain.Team, recipient, inviteURL string) (*Email, error) {
	var body bytes.Buffer
	err := invitationHTML.Execute(&body, map[string]string{
		"TeamName":  team.Name,
		"InviteURL": inviteURL,
	})
	if err != nil {
		return nil, fmt.Errorf("render invitation template: %w", err)
	}

	return &Email{
		TeamID:    team.ID,
		Recipient: recipient,
		Subject:   fmt.Sprintf("You've been invited to %s on Converso", team.Name),
		BodyText:  fmt.Sprintf("You have been invited to join %s on Converso. Accept: %s", team.Name, inviteURL),
		BodyHTML:  body.String(),
		Kind:      KindTeamInvitation,
	}, nil
}

// StatusChangeEmail builds the connection status change message
func StatusChangeEmail(team *domain.Team, conn *domain.Connection, oldStatus, recipient string) (*Email, error) {
	var body bytes.Buffer
	err := statusChangeHTML.Execute(&body, map[string]string{
		"TeamName":       team.Name,
		"ConnectionName": conn.Name,
		"OldStatus":      oldStatus,
		"NewStatus":      conn.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("render status change template: %w", err)
	}

	return &Email{
		TeamID:    team.ID,
		Recipient: recipient,
		Subject:   fmt.Sprintf("Connection %q is now %s", conn.Name, conn.Status),
		BodyText:  fmt.Sprintf("The connection %q changed from %s to %s.", conn.Name, oldStatus, conn.Status),
		BodyHTML:  body.String(),
		Kind:      KindConnectionStatus,
	}, nil
}
