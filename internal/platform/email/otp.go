package email

import (
	"context"
	"fmt"
	"html"
	"math"
	"time"
)

// OTPSender delivers one-time codes through a Mailer.
type OTPSender struct {
	Mailer Mailer
	From   Address
}

func NewOTPSender(mailer Mailer, from Address) *OTPSender {
	return &OTPSender{Mailer: mailer, From: from}
}

func (s *OTPSender) SendCode(ctx context.Context, to, code string, ttl time.Duration) error {
	minutes := int(math.Ceil(ttl.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return s.Mailer.Send(ctx, Message{
		From:    s.From,
		To:      Address{Email: to},
		Subject: "Your verification code",
		Text:    fmt.Sprintf("Your verification code is %s. It expires in %d minute(s).", code, minutes),
		HTML: fmt.Sprintf("<h3>Your verification code is <b>%s</b></h3><p>This code expires in %d minute(s).</p>",
			html.EscapeString(code), minutes),
	})
}
