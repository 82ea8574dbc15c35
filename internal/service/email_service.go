package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"stemquest/internal/models"
	"stemquest/internal/repository"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. An empty fromEmail
// yields a disabled service that skips all sends.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends a welcome email to a new educator
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to StemQuest!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>Welcome to StemQuest!</h1>
		<p>Hi %s,</p>
		<p>Your educator account is ready. Here's what you can do next:</p>
		<ul>
			<li>Enroll students and hand out their sign-in cards</li>
			<li>Assign topics for them to practice</li>
			<li>Track scores, streaks and time spent on the roster view</li>
		</ul>
		<p><a href="%s/login">Get started</a></p>
		<p style="font-size: 12px; color: #666;">This is an automated email from StemQuest. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your StemQuest educator account is ready. Here's what you can do next:
- Enroll students and hand out their sign-in cards
- Assign topics for them to practice
- Track scores, streaks and time spent on the roster view

Get started: %s/login

---
This is an automated email from StemQuest. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// WeeklyReportRow is one student's summary line in a progress report.
type WeeklyReportRow struct {
	Student      *models.Student
	GamesPlayed  int
	AverageScore float64
}

// SendWeeklyReport sends an educator a summary of their students'
// activity over the reporting window.
func (s *EmailService) SendWeeklyReport(ctx context.Context, toEmail, toName string, rows []WeeklyReportRow) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): weekly report to %s", toEmail)
		return nil
	}

	subject := "Your StemQuest Weekly Progress Report"

	var htmlRows, textRows strings.Builder
	for _, row := range rows {
		htmlRows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>Grade %d</td><td>%d</td><td>%.0f%%</td><td>%d day(s)</td></tr>\n",
			row.Student.Username, row.Student.Grade, row.GamesPlayed, row.AverageScore, row.Student.DailyStreak))
		textRows.WriteString(fmt.Sprintf(
			"- %s (grade %d): %d games, %.0f%% average, %d day streak\n",
			row.Student.Username, row.Student.Grade, row.GamesPlayed, row.AverageScore, row.Student.DailyStreak))
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>Weekly Progress Report</h1>
		<p>Hi %s,</p>
		<p>Here's how your students did this week:</p>
		<table border="1" cellpadding="6" cellspacing="0">
			<tr><th>Student</th><th>Grade</th><th>Games</th><th>Avg Score</th><th>Streak</th></tr>
			%s
		</table>
		<p><a href="%s/educator">See the full roster</a></p>
		<p style="font-size: 12px; color: #666;">This is an automated email from StemQuest. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, htmlRows.String(), s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Here's how your students did this week:

%s
See the full roster: %s/educator

---
This is an automated email from StemQuest. Please do not reply.
`, toName, textRows.String(), s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}

// ReportService assembles and sends the weekly progress report for
// every educator with students.
type ReportService struct {
	email        *EmailService
	educatorRepo *repository.EducatorRepository
	studentRepo  *repository.StudentRepository
	historyRepo  *repository.HistoryRepository
}

// NewReportService creates a new report service
func NewReportService(email *EmailService, educatorRepo *repository.EducatorRepository, studentRepo *repository.StudentRepository, historyRepo *repository.HistoryRepository) *ReportService {
	return &ReportService{
		email:        email,
		educatorRepo: educatorRepo,
		studentRepo:  studentRepo,
		historyRepo:  historyRepo,
	}
}

// SendAll sends the weekly report to every educator whose students
// played during the window. Failures are logged per educator so one bad
// address does not stop the run.
func (s *ReportService) SendAll(ctx context.Context) error {
	if !s.email.IsEnabled() {
		return nil
	}

	educators, err := s.educatorRepo.ListEducators()
	if err != nil {
		return fmt.Errorf("failed to list educators: %w", err)
	}

	since := time.Now().AddDate(0, 0, -7)
	for _, educator := range educators {
		students, err := s.studentRepo.ListStudentsByEducator(educator.ID)
		if err != nil {
			log.Printf("weekly report: failed to list students for educator %d: %v", educator.ID, err)
			continue
		}

		var rows []WeeklyReportRow
		for i := range students {
			count, avg, err := s.historyRepo.CountSince(students[i].ID, since)
			if err != nil {
				log.Printf("weekly report: failed to count games for student %d: %v", students[i].ID, err)
				continue
			}
			if count == 0 {
				continue
			}
			rows = append(rows, WeeklyReportRow{
				Student:      &students[i],
				GamesPlayed:  count,
				AverageScore: avg,
			})
		}

		if len(rows) == 0 {
			continue
		}
		if err := s.email.SendWeeklyReport(ctx, educator.Email, educator.Name, rows); err != nil {
			log.Printf("weekly report: failed to send to %s: %v", educator.Email, err)
		}
	}

	return nil
}
