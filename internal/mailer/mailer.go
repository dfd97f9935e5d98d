// Package mailer は Resend を使った通知メール送信を提供します。
//
// クライアントは起動時に一度だけ構築し、必要とするコンポーネントへ参照で渡します。
// APIキーが未設定の場合は送信せず、送信失敗はログに残すだけでリクエスト処理には
// 影響させません。
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/yourusername/launchbase/internal/logger"
)

// Mailer は通知メールの送信クライアントです。
type Mailer struct {
	client *resend.Client
	from   string
	log    *logger.Logger
}

// New は Mailer を作成します。apiKey が空の場合は送信しない Mailer を返します。
func New(apiKey, from string, log *logger.Logger) *Mailer {
	m := &Mailer{
		from: from,
		log:  log,
	}
	if apiKey != "" && from != "" {
		m.client = resend.NewClient(apiKey)
	}
	return m
}

// SendAccountCreated はアカウント作成の通知を送信します。
func (m *Mailer) SendAccountCreated(ctx context.Context, to, name string) {
	m.send(ctx, to, "アカウントが作成されました",
		fmt.Sprintf("<p>%s さん</p><p>アカウントの登録が完了しました。</p>", name))
}

// SendLoginNotification は新しいログインの通知を送信します。
func (m *Mailer) SendLoginNotification(ctx context.Context, to, name, ip, userAgent string) {
	m.send(ctx, to, "新しいログインがありました",
		fmt.Sprintf("<p>%s さん</p><p>新しいログインを検出しました。</p><p>IP: %s<br>端末: %s</p><p>心当たりがない場合はパスワードを変更してください。</p>", name, ip, userAgent))
}

func (m *Mailer) send(ctx context.Context, to, subject, html string) {
	if m.client == nil {
		return
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		m.log.Warn("failed to send email", "to", to, "subject", subject, "error", err)
		return
	}
}
