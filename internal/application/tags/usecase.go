// Package tags gestiona el ciclo de vida de los tags prepago: emisión, consulta por placa,
// recarga de saldo y desactivación. Los tags nunca se borran.
package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	domainsettlement "github.com/jhoicas/Peajes-api/internal/domain/settlement"
	"github.com/jhoicas/Peajes-api/pkg/logger"
)

const defaultMaxAttempts = 5

// TagUseCase casos de uso de tags.
type TagUseCase struct {
	tagRepo     repository.TagRepository
	accountRepo repository.AccountRepository
	maxAttempts int
	log         *logger.Logger
	now         func() time.Time
}

// NewTagUseCase construye el caso de uso. maxAttempts acota los reintentos optimistas.
func NewTagUseCase(
	tagRepo repository.TagRepository,
	accountRepo repository.AccountRepository,
	maxAttempts int,
	log *logger.Logger,
) *TagUseCase {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TagUseCase{
		tagRepo:     tagRepo,
		accountRepo: accountRepo,
		maxAttempts: maxAttempts,
		log:         log.Named("tags"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *TagUseCase) WithClock(now func() time.Time) *TagUseCase {
	uc.now = now
	return uc
}

// Issue emite un tag para una placa registrada con saldo inicial opcional.
func (uc *TagUseCase) Issue(ctx context.Context, plate string, in dto.IssueTagRequest) (*dto.TagResponse, error) {
	plate = strings.TrimSpace(plate)
	tagID := strings.TrimSpace(in.TagID)
	if plate == "" || tagID == "" {
		return nil, fmt.Errorf("%w: placa y tag_id son requeridos", domain.ErrInvalidInput)
	}
	if in.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: saldo inicial negativo", domain.ErrInvalidAmount)
	}
	account, err := uc.accountRepo.GetByPlate(ctx, plate)
	if err != nil {
		return nil, fmt.Errorf("tags: obtener cuenta: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, plate)
	}

	now := uc.now()
	tag := &entity.Tag{
		TagID:     tagID,
		Plate:     plate,
		Status:    entity.TagStatusActive,
		Balance:   domainsettlement.RoundMoney(in.Balance),
		Debt:      decimal.Zero,
		LateFee:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: tag %s", domain.ErrDuplicate, tagID)
		}
		return nil, fmt.Errorf("tags: crear: %w", err)
	}
	// El vínculo en la cuenta es informativo; el tag ya quedó emitido.
	if err := uc.accountRepo.LinkTag(ctx, plate, tagID); err != nil {
		uc.log.Warn().Err(err).Str("placa", plate).Str("tag_id", tagID).Msg("no se pudo vincular el tag a la cuenta")
	}

	uc.log.Info().Str("placa", plate).Str("tag_id", tagID).Str("balance", tag.Balance.StringFixed(2)).Msg("tag emitido")
	return ToTagResponse(tag), nil
}

// Get devuelve un tag por su identificador.
func (uc *TagUseCase) Get(ctx context.Context, tagID string) (*dto.TagResponse, error) {
	tag, err := uc.tagRepo.GetByID(ctx, strings.TrimSpace(tagID))
	if err != nil {
		return nil, fmt.Errorf("tags: obtener: %w", err)
	}
	if tag == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTagNotFound, tagID)
	}
	return ToTagResponse(tag), nil
}

// GetByPlate devuelve el tag de la placa; si tiene varios, el activo.
func (uc *TagUseCase) GetByPlate(ctx context.Context, plate string) (*dto.TagResponse, error) {
	tag, err := uc.currentTag(ctx, plate)
	if err != nil {
		return nil, err
	}
	return ToTagResponse(tag), nil
}

// TopUp acredita saldo al tag de la placa. No salda deuda: la deuda se cobra al resolver la transacción.
func (uc *TagUseCase) TopUp(ctx context.Context, plate string, amount decimal.Decimal) (*dto.TagResponse, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	tag, err := uc.update(ctx, plate, "topup", func(t *entity.Tag, now time.Time) error {
		if !t.IsActive() {
			return fmt.Errorf("%w: tag %s inactivo", domain.ErrInvalidTag, t.TagID)
		}
		return domainsettlement.TopUp(t, amount, now)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("placa", tag.Plate).Str("tag_id", tag.TagID).Str("amount", amount.StringFixed(2)).
		Str("balance", tag.Balance.StringFixed(2)).Msg("tag recargado")
	return ToTagResponse(tag), nil
}

// Deactivate marca el tag activo de la placa como inactivo y elimina el vínculo en la cuenta.
func (uc *TagUseCase) Deactivate(ctx context.Context, plate string) (*dto.TagResponse, error) {
	tag, err := uc.update(ctx, plate, "deactivate", func(t *entity.Tag, now time.Time) error {
		t.Status = entity.TagStatusInactive
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.accountRepo.LinkTag(ctx, tag.Plate, ""); err != nil {
		uc.log.Warn().Err(err).Str("placa", tag.Plate).Msg("no se pudo desvincular el tag de la cuenta")
	}
	uc.log.Info().Str("placa", tag.Plate).Str("tag_id", tag.TagID).Msg("tag desactivado")
	return ToTagResponse(tag), nil
}

// update aplica mutate sobre el tag actual de la placa con compare-and-swap y reintentos acotados.
func (uc *TagUseCase) update(ctx context.Context, plate, op string, mutate func(*entity.Tag, time.Time) error) (*entity.Tag, error) {
	for attempt := 1; attempt <= uc.attempts(); attempt++ {
		current, err := uc.currentTag(ctx, plate)
		if err != nil {
			return nil, err
		}
		work := current.Clone()
		if err := mutate(work, uc.now()); err != nil {
			return nil, err
		}
		err = uc.tagRepo.UpdateIfVersion(ctx, work, current.Version)
		if errors.Is(err, domain.ErrVersionConflict) {
			uc.log.Debug().Str("op", op).Str("tag_id", current.TagID).Int("attempt", attempt).Msg("conflicto de versión, reintentando")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("tags: %s: %w", op, err)
		}
		return work, nil
	}
	return nil, fmt.Errorf("%w: tags %s placa %s", domain.ErrConcurrentUpdateConflict, op, plate)
}

func (uc *TagUseCase) attempts() int {
	if uc.maxAttempts < 1 {
		return defaultMaxAttempts
	}
	return uc.maxAttempts
}

func (uc *TagUseCase) currentTag(ctx context.Context, plate string) (*entity.Tag, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: placa requerida", domain.ErrInvalidInput)
	}
	list, err := uc.tagRepo.ListByPlate(ctx, plate)
	if err != nil {
		return nil, fmt.Errorf("tags: listar por placa: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: placa %s", domain.ErrTagNotFound, plate)
	}
	for _, t := range list {
		if t.IsActive() {
			return t, nil
		}
	}
	return list[0], nil
}

// ToTagResponse mapea la entidad al DTO con montos redondeados.
func ToTagResponse(t *entity.Tag) *dto.TagResponse {
	return &dto.TagResponse{
		TagID:     t.TagID,
		Plate:     t.Plate,
		Status:    t.Status,
		Balance:   domainsettlement.RoundMoney(t.Balance),
		Debt:      domainsettlement.RoundMoney(t.Debt),
		LateFee:   domainsettlement.RoundMoney(t.LateFee),
		HasDebt:   t.HasDebt,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
