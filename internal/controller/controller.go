// Package controller связывает форму, API промоакций и таблицу результатов.
//
// Controller - единственный владелец ViewState. Действие читает форму в момент
// запуска, запрос выполняется без блокировки, а результат применяется под
// мьютексом в порядке завершения: при гонке побеждает последний ответ.
package controller

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"promotion-console/internal/apperror"
	"promotion-console/internal/logger"
	"promotion-console/internal/models"
	"promotion-console/internal/query"

	"github.com/google/uuid"
)

// Тексты строки статуса при успехе.
const (
	StatusSuccess = "Success"
	StatusDeleted = "Promotion has been Deleted!"
)

type FieldCodec interface {
	Encode(form models.Form) models.PromotionPayload
	Decode(p models.Promotion) models.Form
	Clear() models.Form
	Apply(form *models.Form, values url.Values) error
}

type PromotionAPI interface {
	Create(ctx context.Context, payload models.PromotionPayload) (*models.Promotion, error)
	Retrieve(ctx context.Context, id string) (*models.Promotion, error)
	Update(ctx context.Context, id string, payload models.PromotionPayload) (*models.Promotion, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]models.Promotion, error)
}

type Reconciler interface {
	Render(records []models.Promotion) (models.Table, *models.Promotion)
}

type StateStore interface {
	Load(ctx context.Context) (models.ViewState, error)
	Save(ctx context.Context, state models.ViewState) error
}

type EventPublisher interface {
	PublishAction(ctx context.Context, event models.ActionEvent) error
}

// Deps - зависимости контроллера. Store и Publisher необязательны.
type Deps struct {
	Codec      FieldCodec
	API        PromotionAPI
	Reconciler Reconciler
	Store      StateStore
	Publisher  EventPublisher
	Log        *logger.Logger
	Session    string
}

// Outcome - итог одного действия.
type Outcome struct {
	Action  models.Action
	Success bool
	Status  string
	Err     error
}

// Controller управляет состоянием формы консоли.
type Controller struct {
	mu    sync.Mutex
	state models.ViewState

	codec      FieldCodec
	api        PromotionAPI
	reconciler Reconciler
	store      StateStore
	publisher  EventPublisher
	log        *logger.Logger
	session    string
	now        func() time.Time
}

// New создаёт контроллер с пустой формой.
func New(d Deps) *Controller {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		state:      models.ViewState{Form: d.Codec.Clear()},
		codec:      d.Codec,
		api:        d.API,
		reconciler: d.Reconciler,
		store:      d.Store,
		publisher:  d.Publisher,
		log:        log,
		session:    d.Session,
		now:        time.Now,
	}
}

// Restore загружает сохранённое состояние сессии.
func (c *Controller) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	state, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session %q: %w", c.session, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state.Clone()
	return nil
}

// State возвращает копию текущего состояния.
func (c *Controller) State() models.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SetField меняет одно поле формы по его идентификатору.
func (c *Controller) SetField(ctx context.Context, field, value string) error {
	return c.SetFields(ctx, url.Values{field: []string{value}})
}

// SetFields меняет поля формы; при неизвестном поле форма не меняется.
func (c *Controller) SetFields(ctx context.Context, values url.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	form := c.state.Form
	if err := c.codec.Apply(&form, values); err != nil {
		return err
	}
	c.state.Form = form
	c.persist(ctx)
	return nil
}

func (c *Controller) Create(ctx context.Context) Outcome   { return c.Do(ctx, models.ActionCreate) }
func (c *Controller) Retrieve(ctx context.Context) Outcome { return c.Do(ctx, models.ActionRetrieve) }
func (c *Controller) Update(ctx context.Context) Outcome   { return c.Do(ctx, models.ActionUpdate) }
func (c *Controller) Delete(ctx context.Context) Outcome   { return c.Do(ctx, models.ActionDelete) }
func (c *Controller) Search(ctx context.Context) Outcome   { return c.Do(ctx, models.ActionSearch) }
func (c *Controller) Clear(ctx context.Context) Outcome    { return c.Do(ctx, models.ActionClear) }

// Do выполняет действие и дожидается результата.
func (c *Controller) Do(ctx context.Context, action models.Action) Outcome {
	return <-c.Submit(ctx, action)
}

// Submit запускает действие асинхронно. Канал получает ровно один Outcome
// после того, как результат применён к состоянию.
func (c *Controller) Submit(ctx context.Context, action models.Action) <-chan Outcome {
	done := make(chan Outcome, 1)

	if _, ok := models.ParseAction(string(action)); !ok {
		done <- Outcome{Action: action, Err: fmt.Errorf("unknown action %q", action)}
		return done
	}

	if action == models.ActionClear {
		done <- c.clear(ctx)
		return done
	}

	form := c.dispatch()
	go func() {
		res := c.execute(ctx, action, form)
		done <- c.apply(ctx, res)
	}()
	return done
}

// dispatch снимает копию формы и очищает строку статуса.
func (c *Controller) dispatch() models.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Status = ""
	return c.state.Form
}

type result struct {
	action    models.Action
	form      models.Form
	promotion *models.Promotion
	records   []models.Promotion
	err       error
}

func (c *Controller) execute(ctx context.Context, action models.Action, form models.Form) result {
	res := result{action: action, form: form}
	switch action {
	case models.ActionCreate:
		res.promotion, res.err = c.api.Create(ctx, c.codec.Encode(form))
	case models.ActionRetrieve:
		res.promotion, res.err = c.api.Retrieve(ctx, form.ID)
	case models.ActionUpdate:
		res.promotion, res.err = c.api.Update(ctx, form.ID, c.codec.Encode(form))
	case models.ActionDelete:
		res.err = c.api.Delete(ctx, form.ID)
	case models.ActionSearch:
		res.records, res.err = c.api.Search(ctx, query.Build(query.FromForm(form)))
	}
	return res
}

func (c *Controller) apply(ctx context.Context, res result) Outcome {
	c.mu.Lock()

	out := Outcome{Action: res.action, Err: res.err}
	entry := c.log.WithField("action", res.action).WithField("session", c.session)

	if res.err != nil {
		out.Status = apperror.Message(res.err)
		if res.action == models.ActionRetrieve {
			c.state.Form = c.codec.Clear()
		}
		entry.WithError(res.err).Info("Promotion action failed")
	} else {
		out.Success = true
		out.Status = StatusSuccess
		switch res.action {
		case models.ActionCreate, models.ActionRetrieve, models.ActionUpdate:
			if res.promotion != nil {
				c.state.Form = c.codec.Decode(*res.promotion)
			}
		case models.ActionDelete:
			c.state.Form = c.codec.Clear()
			out.Status = StatusDeleted
		case models.ActionSearch:
			table, selected := c.reconciler.Render(res.records)
			c.state.Table = table
			if selected != nil {
				c.state.Form = c.codec.Decode(*selected)
			}
			entry = entry.WithField("results", len(res.records))
		}
		entry.Debug("Promotion action completed")
	}
	c.state.Status = out.Status

	promotionID := res.form.ID
	if res.promotion != nil && res.promotion.ID != "" {
		promotionID = string(res.promotion.ID)
	}
	c.persist(ctx)
	c.mu.Unlock()

	c.publish(ctx, out, promotionID)
	return out
}

func (c *Controller) clear(ctx context.Context) Outcome {
	c.mu.Lock()
	promotionID := c.state.Form.ID
	c.state.Form = c.codec.Clear()
	c.state.Status = ""
	c.persist(ctx)
	c.mu.Unlock()

	out := Outcome{Action: models.ActionClear, Success: true}
	c.publish(ctx, out, promotionID)
	return out
}

// persist вызывается под c.mu.
func (c *Controller) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, c.state.Clone()); err != nil {
		c.log.WithError(err).WithField("session", c.session).Warn("Failed to save session state")
	}
}

func (c *Controller) publish(ctx context.Context, out Outcome, promotionID string) {
	if c.publisher == nil {
		return
	}
	event := models.ActionEvent{
		ID:          uuid.New(),
		Action:      out.Action,
		Success:     out.Success,
		Status:      out.Status,
		PromotionID: promotionID,
		Session:     c.session,
		OccurredAt:  c.now().UTC(),
	}
	if err := c.publisher.PublishAction(ctx, event); err != nil {
		c.log.WithError(err).WithField("action", out.Action).Warn("Failed to publish action event")
	}
}
