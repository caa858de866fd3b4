package workers

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"beaconmarket/bot"
	"beaconmarket/models"
	"beaconmarket/tools"

	"github.com/jinzhu/gorm"
)

const (
	defaultInterval = 1 * time.Second
	defaultTimeout  = 60 * time.Second
	batchSize       = 50
)

// Sender delivers a reply to a WhatsApp number.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
}

// Processor answers pending events stored by the webhook.
type Processor struct {
	DB       *gorm.DB
	Bot      *bot.Bot
	Sender   Sender
	Retry    tools.RetryConfig
	DryRun   bool // record replies without sending them
	Interval time.Duration
	Timeout  time.Duration
}

func NewProcessor(db *gorm.DB, b *bot.Bot, sender Sender, dryRun bool) *Processor {
	return &Processor{
		DB:       db,
		Bot:      b,
		Sender:   sender,
		Retry:    tools.RetryConfig{MaxAttempts: 3, BaseDelay: time.Second},
		DryRun:   dryRun,
		Interval: defaultInterval,
		Timeout:  defaultTimeout,
	}
}

// Start runs the processing loop until ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				p.ProcessDue(now)
			}
		}
	}()
}

// ProcessDue claims every pending event scheduled at or before now and
// handles them. Events of one sender run one after the other in schedule
// order, so a LIST is stored before the EDIT that follows it; different
// senders run concurrently. It returns the number of claimed events.
func (p *Processor) ProcessDue(now time.Time) int {
	var events []models.Event
	if err := p.DB.
		Where("status = ?", models.EVENT_STATUS_PENDING).
		Where("scheduled_at IS NOT NULL AND scheduled_at <= ?", now).
		Order("scheduled_at asc, id asc").
		Limit(batchSize).
		Find(&events).Error; err != nil {
		log.Printf("events worker: query error: %v", err)
		return 0
	}

	var senders []string
	bySender := map[string][]int64{}
	claimed := 0
	for _, ev := range events {
		// optimistic lock: only the worker that flips the status handles it
		res := p.DB.Model(&models.Event{}).
			Where("id = ? AND status = ?", ev.ID, models.EVENT_STATUS_PENDING).
			Update("status", models.EVENT_STATUS_PROCESSING)
		if res.Error != nil || res.RowsAffected == 0 {
			continue
		}
		claimed++

		if _, ok := bySender[ev.Recipient]; !ok {
			senders = append(senders, ev.Recipient)
		}
		bySender[ev.Recipient] = append(bySender[ev.Recipient], ev.ID)
	}

	var wg sync.WaitGroup
	for _, sender := range senders {
		wg.Add(1)
		go func(ids []int64) {
			defer wg.Done()
			for _, id := range ids {
				p.handleEvent(id)
			}
		}(bySender[sender])
	}
	wg.Wait()
	return claimed
}

func (p *Processor) handleEvent(eventID int64) {
	var ev models.Event
	if err := p.DB.First(&ev, eventID).Error; err != nil {
		return
	}
	if ev.Status != models.EVENT_STATUS_PROCESSING {
		return
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	to := ev.From
	if strings.TrimSpace(to) == "" {
		to = ev.Recipient
	}

	reply, ok := p.Bot.HandleMessage(ctx, bot.Message{
		Text:       ev.Text,
		Sender:     to,
		SenderName: ev.SenderName,
	})
	if !ok || strings.TrimSpace(reply) == "" {
		p.finish(ev.ID, models.EVENT_STATUS_IGNORED, "")
		return
	}

	if p.DryRun || p.Sender == nil {
		p.finish(ev.ID, models.EVENT_STATUS_DONE, reply)
		return
	}

	err := p.Retry.Do(ctx, "send whatsapp", func() error {
		return p.Sender.SendText(ctx, to, reply)
	})
	if err != nil {
		log.Printf("events worker: send whatsapp error: %v", err)
		p.finish(ev.ID, models.EVENT_STATUS_FAILED, reply)
		return
	}

	p.finish(ev.ID, models.EVENT_STATUS_DONE, reply)
}

func (p *Processor) finish(id int64, status, reply string) {
	t := time.Now()
	if err := p.DB.Model(&models.Event{}).Where("id = ?", id).Updates(map[string]any{
		"status":       status,
		"processed_at": &t,
		"reply_text":   reply,
	}).Error; err != nil {
		log.Printf("events worker: update event %d: %v", id, err)
	}
}
