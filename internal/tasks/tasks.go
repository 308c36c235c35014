package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoders for image.Decode
	"image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/config"
	"salemre/backend/internal/email"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/models"
	"salemre/backend/internal/services"
	"salemre/backend/internal/storage"
)

// Task types.
const (
	TypeInquiryNotify = "inquiry:notify"
	TypeInquiryDigest = "inquiry:digest"
	TypeThumbnail     = "image:thumbnail"
)

// Queues.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
	QueueImages   = "images"
)

// DigestWindow is how far back the digest looks when its payload has no start.
const DigestWindow = 24 * time.Hour

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// --- Task Client (Enqueuing tasks) ---

// InquiryNotifyPayload names the inquiry to announce.
type InquiryNotifyPayload struct {
	InquiryID int64 `json:"inquiry_id"`
}

// ThumbnailPayload names the stored image to thumbnail.
type ThumbnailPayload struct {
	Name string `json:"name"`
}

// DigestPayload bounds the digest window.
type DigestPayload struct {
	Since time.Time `json:"since"`
}

func newTask(typ string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	return asynq.NewTask(typ, b, opts...), nil
}

// NewInquiryNotifyTask builds the admin notification task of an inquiry.
func NewInquiryNotifyTask(inquiryID int64) (*asynq.Task, error) {
	return newTask(TypeInquiryNotify, InquiryNotifyPayload{InquiryID: inquiryID},
		asynq.Queue(QueueCritical), asynq.MaxRetry(5))
}

// NewThumbnailTask builds the thumbnail task of a stored upload.
func NewThumbnailTask(name string) (*asynq.Task, error) {
	return newTask(TypeThumbnail, ThumbnailPayload{Name: name},
		asynq.Queue(QueueImages), asynq.MaxRetry(3))
}

// NewDigestTask builds the digest task covering inquiries created since since.
func NewDigestTask(since time.Time) (*asynq.Task, error) {
	return newTask(TypeInquiryDigest, DigestPayload{Since: since.UTC()},
		asynq.Queue(QueueLow), asynq.Unique(time.Hour))
}

// Client enqueues tasks. It implements services.TaskEnqueuer.
type Client struct {
	client *asynq.Client
	log    zerolog.Logger
}

var _ services.TaskEnqueuer = (*Client)(nil)

func NewClient(rdb *redis.Client) *Client {
	return &Client{
		client: asynq.NewClient(redisOpt(rdb)),
		log:    logging.Component("tasks"),
	}
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, err error) error {
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	c.log.Debug().Str("type", task.Type()).Str("id", info.ID).Str("queue", info.Queue).Msg("task enqueued")
	return nil
}

func (c *Client) EnqueueInquiryNotification(ctx context.Context, inquiryID int64) error {
	task, err := NewInquiryNotifyTask(inquiryID)
	return c.enqueue(ctx, task, err)
}

func (c *Client) EnqueueThumbnail(ctx context.Context, name string) error {
	task, err := NewThumbnailTask(name)
	return c.enqueue(ctx, task, err)
}

// EnqueueDigest schedules a digest of the last DigestWindow.
func (c *Client) EnqueueDigest(ctx context.Context) error {
	task, err := NewDigestTask(time.Now().Add(-DigestWindow))
	if err != nil {
		return err
	}
	err = c.enqueue(ctx, task, nil)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		c.log.Info().Msg("digest already queued")
		return nil
	}
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}

// --- Task Server (Processing tasks) ---

// InquiryReader is the part of the inquiry service the workers need.
type InquiryReader interface {
	Get(ctx context.Context, id int64, actor *services.Actor) (*models.Inquiry, error)
	Since(ctx context.Context, t time.Time) ([]models.Inquiry, error)
}

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	emailSender email.Sender
	files       storage.FileStore
	inquiries   InquiryReader
	log         zerolog.Logger
}

func NewTaskProcessor(cfg *config.Config, emailSender email.Sender, files storage.FileStore, inquiries InquiryReader) *TaskProcessor {
	return &TaskProcessor{
		cfg:         cfg,
		emailSender: emailSender,
		files:       files,
		inquiries:   inquiries,
		log:         logging.Component("tasks"),
	}
}

// workerActor reads inquiries on behalf of the background workers.
var workerActor = &services.Actor{Role: models.RoleAdmin}

// SetupServer configures an Asynq server and the mux of every task handler.
// The caller starts and shuts down the server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, concurrency int) (*asynq.Server, *asynq.ServeMux) {
	logger := logging.Component("asynq")
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueImages:   5,
				QueueDefault:  3,
				QueueLow:      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error().Err(err).Str("type", task.Type()).Bytes("payload", task.Payload()).Msg("task failed")
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInquiryNotify, processor.HandleInquiryNotifyTask)
	mux.HandleFunc(TypeInquiryDigest, processor.HandleInquiryDigestTask)
	mux.HandleFunc(TypeThumbnail, processor.HandleThumbnailTask)
	return srv, mux
}

// --- Task Handlers ---

func (p *TaskProcessor) send(ctx context.Context, subject, body string) error {
	if p.cfg.NotifyEmail == "" {
		p.log.Warn().Str("subject", subject).Msg("NOTIFY_EMAIL not configured, dropping notification")
		return nil
	}
	to := []string{p.cfg.NotifyEmail}
	msg := email.BuildMessage(p.cfg.SmtpFromAddress, to, subject, body)
	if err := p.emailSender.Send(ctx, to, subject, msg); err != nil {
		return fmt.Errorf("failed to send %q: %w", subject, err)
	}
	return nil
}

// HandleInquiryNotifyTask emails the inquiry to the notification address.
func (p *TaskProcessor) HandleInquiryNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload InquiryNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal inquiry payload: %v: %w", err, asynq.SkipRetry)
	}

	i, err := p.inquiries.Get(ctx, payload.InquiryID, workerActor)
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		p.log.Warn().Int64("inquiry", payload.InquiryID).Msg("inquiry deleted before notification")
		return fmt.Errorf("inquiry %d not found: %w", payload.InquiryID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	subject, body, err := email.Render(email.TemplateInquiryNotify, i)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := p.send(ctx, subject, body); err != nil {
		return err
	}
	p.log.Info().Int64("inquiry", i.ID).Msg("inquiry notification sent")
	return nil
}

// HandleInquiryDigestTask emails a summary of the inquiries received in the window.
func (p *TaskProcessor) HandleInquiryDigestTask(ctx context.Context, t *asynq.Task) error {
	var payload DigestPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal digest payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.Since.IsZero() {
		payload.Since = time.Now().Add(-DigestWindow)
	}

	list, err := p.inquiries.Since(ctx, payload.Since)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		p.log.Info().Time("since", payload.Since).Msg("no new inquiries for digest")
		return nil
	}

	subject, body, err := email.Render(email.TemplateInquiryDigest, struct {
		Since     time.Time
		Inquiries []models.Inquiry
	}{payload.Since, list})
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := p.send(ctx, subject, body); err != nil {
		return err
	}
	p.log.Info().Int("count", len(list)).Msg("inquiry digest sent")
	return nil
}

// HandleThumbnailTask stores a JPEG thumbnail next to an uploaded image.
func (p *TaskProcessor) HandleThumbnailTask(ctx context.Context, t *asynq.Task) error {
	var payload ThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal thumbnail payload: %v: %w", err, asynq.SkipRetry)
	}
	if !storage.ValidName(payload.Name) {
		return fmt.Errorf("invalid upload name %q: %w", payload.Name, asynq.SkipRetry)
	}

	rc, _, err := p.files.Open(ctx, payload.Name)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("upload %s not found: %w", payload.Name, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("failed to open upload %s: %w", payload.Name, err)
	}
	defer rc.Close()

	limit := p.cfg.UploadMaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return fmt.Errorf("failed to read upload %s: %w", payload.Name, err)
	}
	if int64(len(data)) > limit {
		return fmt.Errorf("upload %s exceeds max size: %w", payload.Name, asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("unsupported image format or corrupt image %s: %w", payload.Name, asynq.SkipRetry)
	}

	width := uint(p.cfg.ThumbnailWidth)
	if width == 0 {
		width = 480
	}
	thumb := resize.Thumbnail(width, width, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode thumbnail of %s: %w", payload.Name, err)
	}

	thumbName := storage.ThumbnailName(payload.Name)
	if _, err := p.files.Put(ctx, thumbName, "image/jpeg", buf.Bytes()); err != nil {
		return fmt.Errorf("failed to store thumbnail %s: %w", thumbName, err)
	}
	p.log.Info().
		Str("name", payload.Name).
		Str("format", format).
		Int("width", thumb.Bounds().Dx()).
		Int("height", thumb.Bounds().Dy()).
		Msg("thumbnail stored")
	return nil
}
