package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"wildenergy/internal/logger"
	"wildenergy/internal/metrics"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service queues outgoing mail on a redis list and drains it from a worker
// goroutine, so a slow SMTP server never blocks a request.
type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	job := EmailJob{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		return err
	}

	logger.Infof("Email queued: %s to %s", subject, to)
	metrics.SetEmailQueueLength(float64(s.QueueLength(ctx)))
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s (attempt %d): %v", job.To, job.Tries, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			s.saveFailed(job, err)
			metrics.RecordEmail("registration", "failed")
		}
		return
	}

	metrics.RecordEmail("registration", "sent")
	metrics.SetEmailQueueLength(float64(s.QueueLength(ctx)))
	logger.Infof("Email sent to %s", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Email to %s moved to failed queue after %d attempts", job.To, job.Tries)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

// SendRegistrationConfirmation mails the booked member their QR code. The
// code string is what the front desk scanner expects at check-in.
func (s *Service) SendRegistrationConfirmation(ctx context.Context, to, memberName, className string, start time.Time, qrCode string) error {
	subject := "Registration Confirmed - " + className
	body := fmt.Sprintf(`Hi %s,

You're registered!

Class: %s
Time: %s

Show this code at the front desk to check in:

%s

See you at the gym!

- WildEnergy Team`, memberName, className, start.Format("Jan 2, 2006 at 3:04 PM"), qrCode)

	return s.Send(ctx, to, memberName, subject, body)
}

func (s *Service) SendCancellation(ctx context.Context, to, memberName, className string, start time.Time, forfeited bool) error {
	subject := "Registration Cancelled - " + className

	note := "Your session has been returned to your plan."
	if forfeited {
		note = "The class was less than 24 hours away, so the session was not returned."
	}

	body := fmt.Sprintf(`Hi %s,

Your registration has been cancelled:

Class: %s
Time: %s

%s

- WildEnergy Team`, memberName, className, start.Format("Jan 2, 2006 at 3:04 PM"), note)

	return s.Send(ctx, to, memberName, subject, body)
}

func (s *Service) SendReminder(ctx context.Context, to, memberName, className string, start time.Time) error {
	subject := "Reminder: " + className + " Tomorrow"
	body := fmt.Sprintf(`Hi %s,

This is a reminder about your class tomorrow:

Class: %s
Time: %s

See you soon!

- WildEnergy Team`, memberName, className, start.Format("Jan 2, 2006 at 3:04 PM"))

	return s.Send(ctx, to, memberName, subject, body)
}
