package mail

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OliverBrennan/PlanLedger/internal/pkg/env"
)

func publicBase() string {
	return strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:8080"), "/")
}

// SendActivationMail sends the account activation link to a new staff member.
func SendActivationMail(to, name, token string) error {
	link := fmt.Sprintf("%s/api/v1/auth/activate?token=%s", publicBase(), token)
	subject := "Activate your PlanLedger account"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Your PlanLedger account has been created. Click the link below to activate it:</p>"+
			"<p><a href=\"%s\">%s</a></p>"+
			"<p>If you did not expect this email, you can ignore it.</p>",
		name, link, link,
	)
	return SendMail(to, subject, body)
}

// SendPlanExpiryMail notifies the managing staff member that one of their
// client's plans ends soon, including how much funding is still unallocated.
func SendPlanExpiryMail(to, staffName, clientName, planTitle string, endDate time.Time, remaining decimal.Decimal) error {
	subject := fmt.Sprintf("Budget plan for %s expires on %s", clientName, endDate.Format("02 Jan 2006"))
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>The plan <strong>%s</strong> for <strong>%s</strong> ends on <strong>%s</strong>.</p>"+
			"<p>Unallocated funds: <strong>$%s</strong>. Funds not allocated before the end date are lost.</p>"+
			"<p><a href=\"%s\">Open PlanLedger</a> to review the plan.</p>",
		staffName, planTitle, clientName, endDate.Format("02 January 2006"),
		remaining.StringFixed(2), publicBase(),
	)
	return SendMail(to, subject, body)
}
