package settlement

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
)

// ClassifyPayerUseCase determina quién paga un cruce. Sin efectos secundarios.
type ClassifyPayerUseCase struct {
	accountRepo   repository.AccountRepository
	tagRepo       repository.TagRepository
	tollPointRepo repository.TollPointRepository
	rt            Runtime
}

// NewClassifyPayerUseCase construye el caso de uso.
func NewClassifyPayerUseCase(
	accountRepo repository.AccountRepository,
	tagRepo repository.TagRepository,
	tollPointRepo repository.TollPointRepository,
	rt Runtime,
) *ClassifyPayerUseCase {
	return &ClassifyPayerUseCase{
		accountRepo:   accountRepo,
		tagRepo:       tagRepo,
		tollPointRepo: tollPointRepo,
		rt:            rt.withDefaults("classify_payer"),
	}
}

// ClassifyInput entrada: placa obligatoria; tag y peaje opcionales.
type ClassifyInput struct {
	EventID     string
	Plate       string
	TagID       string
	TollPointID string
}

// Classification resultado de la clasificación. Account, Tag y TollPoint pueden ser nil.
type Classification struct {
	PayerClass entity.PayerClass
	Account    *entity.Account
	Tag        *entity.Tag
	TollPoint  *entity.TollPoint
}

// ClassifyPayer aplica la precedencia: tag válido > cuenta registrada > no registrado.
// Un tag informado que no existe, está inactivo o es de otra placa falla con ErrInvalidTag.
func (uc *ClassifyPayerUseCase) ClassifyPayer(ctx context.Context, in ClassifyInput) (*Classification, error) {
	plate := strings.TrimSpace(in.Plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: placa requerida", domain.ErrInvalidInput)
	}
	tagID := strings.TrimSpace(in.TagID)
	tollPointID := strings.TrimSpace(in.TollPointID)

	var (
		account   *entity.Account
		tag       *entity.Tag
		tollPoint *entity.TollPoint
	)

	// Las tres lecturas son independientes.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := uc.accountRepo.GetByPlate(gctx, plate)
		if err != nil {
			return fmt.Errorf("clasificar: obtener cuenta: %w", err)
		}
		account = a
		return nil
	})
	if tagID != "" {
		g.Go(func() error {
			t, err := uc.tagRepo.GetByID(gctx, tagID)
			if err != nil {
				return fmt.Errorf("clasificar: obtener tag: %w", err)
			}
			tag = t
			return nil
		})
	}
	if tollPointID != "" {
		g.Go(func() error {
			tp, err := uc.tollPointRepo.GetByID(gctx, tollPointID)
			if err != nil {
				return fmt.Errorf("clasificar: obtener peaje: %w", err)
			}
			tollPoint = tp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if tollPointID != "" && tollPoint == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTollPointNotFound, tollPointID)
	}

	out := &Classification{Account: account, TollPoint: tollPoint}
	switch {
	case tagID != "":
		if tag == nil || !tag.IsActive() || tag.Plate != plate {
			uc.rt.Log.Info().
				Str("event_id", in.EventID).
				Str("placa", plate).
				Str("tag_id", tagID).
				Msg("tag rechazado")
			return nil, fmt.Errorf("%w: tag %s placa %s", domain.ErrInvalidTag, tagID, plate)
		}
		out.PayerClass = entity.PayerPrepaidTag
		out.Tag = tag
	case account.IsRegistered():
		out.PayerClass = entity.PayerRegistered
	default:
		out.PayerClass = entity.PayerUnregistered
	}

	uc.rt.Log.Info().
		Str("event_id", in.EventID).
		Str("placa", plate).
		Str("payer_class", out.PayerClass.String()).
		Msg("pagador clasificado")
	return out, nil
}
