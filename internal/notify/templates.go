package notify

import (
	"html/template"
	"strings"
)

var funcs = template.FuncMap{
	"join":  strings.Join,
	"lines": func(s string) []string { return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") },
}

const layout = `{{define "layout"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f5f7;">
  <h1 style="color: #4B3C55; text-align: center;">{{template "title" .}}</h1>
  <div style="background-color: white; padding: 25px; border-radius: 12px;">{{template "body" .}}</div>
  {{if .Customer}}<p style="text-align: center; color: #999; font-size: 12px;">This is an automated confirmation message. Please keep this email for your records.</p>{{end}}
</div>{{end}}`

const contactBlock = `{{define "contact"}}<div style="background-color: #D4AF37; padding: 15px; border-radius: 8px; color: white; text-align: center;">
  <p><strong>Get in Touch</strong></p>
  <p>Email: {{.ContactEmail}}{{if .CompanyPhone}}<br>Phone: {{.CompanyPhone}}{{end}}</p>
</div>
<p style="margin-top: 30px;">Best regards,<br><strong>The {{.Company}} Team</strong></p>{{end}}`

const bookingOperator = `{{define "title"}}New Booking Received!{{end}}{{define "body"}}
<p>A new booking request has been submitted to <strong>{{.Company}}</strong>.</p>
<h2>Customer &amp; Booking Details</h2>
<p><strong>Customer Name:</strong> {{.Name}}</p>
<p><strong>Customer Email:</strong> {{.Email}}</p>
<p><strong>Booking Reference ID:</strong> {{.Booking.ID}}</p>
<p><strong>Event Type(s):</strong> {{join .Booking.EventTypes ", "}}</p>
<p><strong>Preferred Date(s):</strong> {{join .Booking.Dates ", "}}</p>
<p><strong>Venue:</strong> {{.Booking.Venue}}</p>
<p><strong>Number of Attendees:</strong> {{.Booking.AttendeeCount}}</p>
<p><strong>Budget Range:</strong> {{.Booking.Budget}}</p>
<p><strong>Action Required:</strong> Contact the customer to discuss event requirements and provide a customized quote.</p>
{{end}}`

const bookingCustomer = `{{define "title"}}Thank You for Your Booking!{{end}}{{define "body"}}
<p>Hi {{.Name}},</p>
<p>We have received your booking request at <strong>{{.Company}}</strong>. Our team will review your details and contact you shortly to discuss your event requirements and provide you with a customized proposal.</p>
<h2>What's Next?</h2>
<p>We will be in touch within <strong>24-48 hours</strong> to discuss your event in detail.</p>
<p><strong>Your Reference ID:</strong> <code>{{.Booking.ID}}</code></p>
<p>Please save this ID for your records.</p>
{{template "contact" .}}
{{end}}`

const queryOperator = `{{define "title"}}New Query Received!{{end}}{{define "body"}}
<p>A new inquiry has been submitted to <strong>{{.Company}}</strong>.</p>
<h2>Customer &amp; Query Details</h2>
<p><strong>Customer Name:</strong> {{.Name}}</p>
<p><strong>Customer Email:</strong> {{.Email}}</p>
<p><strong>Query Reference ID:</strong> {{.Query.ID}}</p>
{{if .Query.Phone}}<p><strong>Phone:</strong> {{.Query.Phone}}</p>{{end}}
<p><strong>Message:</strong></p>
<p style="border: 1px solid #e0d6e4; padding: 12px;">{{range $i, $l := lines .Query.Message}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
<p><strong>Action Required:</strong> Review the query details and follow up with the customer within 24-48 hours.</p>
{{end}}`

const queryCustomer = `{{define "title"}}We've Received Your Query!{{end}}{{define "body"}}
<p>Hi {{.Name}},</p>
<p>Thank you for reaching out to <strong>{{.Company}}</strong>. We have received your query and will respond to you as soon as possible.</p>
<h2>What's Next?</h2>
<p>Our team will review your query and get back to you within <strong>24-48 hours</strong>.</p>
<p><strong>Your Reference ID:</strong> <code>{{.Query.ID}}</code></p>
{{template "contact" .}}
{{end}}`

func mustParse(body string) *template.Template {
	return template.Must(template.New("layout").Funcs(funcs).Parse(layout + contactBlock + body))
}

var (
	tmplBookingOperator = mustParse(bookingOperator)
	tmplBookingCustomer = mustParse(bookingCustomer)
	tmplQueryOperator   = mustParse(queryOperator)
	tmplQueryCustomer   = mustParse(queryCustomer)
)

// view is the data every template renders from.
type view struct {
	Company      string
	CompanyPhone string
	ContactEmail string
	Name         string
	Email        string
	Customer     bool
	Booking      BookingDetails
	Query        QueryDetails
}

func render(t *template.Template, v view) (string, error) {
	var sb strings.Builder
	if err := t.ExecuteTemplate(&sb, "layout", v); err != nil {
		return "", err
	}
	return sb.String(), nil
}
