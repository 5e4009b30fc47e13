package notify

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/aziwar/dr-islam-website-sub002/internal/contact"
)

// Email bodies are rendered through html/template so every interpolated
// field is escaped again here, independent of what the sanitizer stripped.

var (
	clinicHTMLTmpl  = template.Must(template.New("clinic").Parse(clinicNotificationHTML))
	patientHTMLTmpl = template.Must(template.New("patient").Parse(patientConfirmationHTML))
	clinicTextTmpl  = texttemplate.Must(texttemplate.New("clinic").Parse(clinicNotificationText))
	patientTextTmpl = texttemplate.Must(texttemplate.New("patient").Parse(patientConfirmationText))
)

func buildClinicMessage(sub contact.SanitizedSubmission, clinicEmail string) (EmailMessage, error) {
	var html, text bytes.Buffer
	if err := clinicHTMLTmpl.Execute(&html, sub); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render clinic html: %w", err)
	}
	if err := clinicTextTmpl.Execute(&text, sub); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render clinic text: %w", err)
	}
	return EmailMessage{
		To:      clinicEmail,
		Subject: fmt.Sprintf("🦷 New Patient Inquiry - %s", sub.Name),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func buildPatientMessage(sub contact.SanitizedSubmission) (EmailMessage, error) {
	var html, text bytes.Buffer
	if err := patientHTMLTmpl.Execute(&html, sub); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render patient html: %w", err)
	}
	if err := patientTextTmpl.Execute(&text, sub); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render patient text: %w", err)
	}
	return EmailMessage{
		To:      sub.Email,
		ToName:  sub.Name,
		Subject: "We received your message | لقد استلمنا رسالتك",
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

const clinicNotificationHTML = `<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #0ea5e9;">🦷 New Patient Inquiry</h2>
<p><strong>{{.Name}}</strong> submitted the contact form.</p>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Name:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Name}}</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Phone:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><a href="tel:{{.Phone}}">{{.Phone}}</a></td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Email:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Service:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Service}}</td></tr>
  {{if .Message}}<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Message:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Message}}</td></tr>{{end}}
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Received:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Timestamp}} (Kuwait time)</td></tr>
</table>
<p style="background: #f0f9ff; padding: 12px; border-radius: 8px; border-left: 4px solid #0ea5e9;">
  Please follow up with the patient to confirm their appointment.
</p>
</div>`

const clinicNotificationText = `New patient inquiry via the website contact form.

Name: {{.Name}}
Phone: {{.Phone}}
Email: {{.Email}}
Service: {{.Service}}
{{if .Message}}Message: {{.Message}}
{{end}}Received: {{.Timestamp}} (Kuwait time)

Please follow up with the patient to confirm their appointment.`

const patientConfirmationHTML = `<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #0ea5e9;">Thank you, {{.Name}}</h2>
<p>We received your inquiry about <strong>{{.Service}}</strong> on {{.Timestamp}} (Kuwait time). Our team will contact you at {{.Phone}} as soon as possible.</p>
<p>If your case is urgent, please call the clinic directly.</p>
<hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;"/>
<div dir="rtl" style="text-align: right;">
<h2 style="color: #0ea5e9;">شكراً لك، {{.Name}}</h2>
<p>لقد استلمنا استفسارك بخصوص <strong>{{.Service}}</strong>. سيتواصل معك فريقنا على الرقم {{.Phone}} في أقرب وقت ممكن.</p>
<p>إذا كانت حالتك طارئة، يرجى الاتصال بالعيادة مباشرة.</p>
</div>
</div>`

const patientConfirmationText = `Thank you, {{.Name}}.

We received your inquiry about {{.Service}} on {{.Timestamp}} (Kuwait time).
Our team will contact you at {{.Phone}} as soon as possible.
If your case is urgent, please call the clinic directly.

شكراً لك، {{.Name}}.
لقد استلمنا استفسارك بخصوص {{.Service}}. سيتواصل معك فريقنا على الرقم {{.Phone}} في أقرب وقت ممكن.
إذا كانت حالتك طارئة، يرجى الاتصال بالعيادة مباشرة.`
