package libs

import (
	"bytes"
	"fmt"
	"html/template"
	"storefront/models"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer returns nil when SMTP is not configured.
func NewMailer(cfg SMTPConfig) *Mailer {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return nil
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

var orderConfirmationTemplate = template.Must(template.New("order").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        .order-box { background-color: #fff7ed; padding: 20px; margin: 20px 0; border-radius: 8px; }
        td { padding: 4px 8px; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Order Confirmation</h2>
        <p>Thank you for your order, {{.FullName}}!</p>
        <div class="order-box">
            <p><strong>Order Number:</strong> {{.PublicID}}</p>
            <table>
            {{range .Lines}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>{{.Total}}</td></tr>
            {{end}}</table>
            <p><strong>Total Amount:</strong> {{.Total}}</p>
        </div>
        <p>Shipping to: {{.Street}}, {{.PostalCode}} {{.City}}</p>
    </div>
</body>
</html>
`))

type confirmationLine struct {
	Name     string
	Quantity int
	Total    string
}

func renderOrderConfirmation(order *models.Order) (string, error) {
	lines := make([]confirmationLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, confirmationLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Total:    item.LineTotal.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	err := orderConfirmationTemplate.Execute(&buf, map[string]any{
		"FullName":   order.FullName,
		"PublicID":   order.PublicID,
		"Lines":      lines,
		"Total":      order.Total.StringFixed(2),
		"Street":     order.Street,
		"PostalCode": order.PostalCode,
		"City":       order.City,
	})
	if err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}

func (m *Mailer) SendOrderConfirmation(order *models.Order) error {
	body, err := renderOrderConfirmation(order)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s", order.PublicID))
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
