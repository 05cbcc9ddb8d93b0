package sharing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgtype"
	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/config"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/dberror"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const slugRegex = `^[a-z0-9-]+$`

// fallbackSlugAlphabet is used when a title normalizes to nothing.
const fallbackSlugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const fallbackSlugLength = 10

var (
	slugRe          = regexp.MustCompile(slugRegex)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
	slugStripRe     = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// IsValidSlug reports whether s is a well formed slug: one or more characters
// from [a-z0-9-].
func IsValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// NormalizeToSlug reduces free text toward slug form: whitespace runs become a
// single '-', characters outside [A-Za-z0-9-] are dropped, and one trailing
// '-' is trimmed. It does not lowercase; callers that need a valid slug
// lowercase the input first.
func NormalizeToSlug(text string) string {
	s := whitespaceRunRe.ReplaceAllString(text, "-")
	s = slugStripRe.ReplaceAllString(s, "")
	return strings.TrimSuffix(s, "-")
}

// slugBase picks the starting point for unique slug generation: the current
// slug when one is set, else the normalized title, else the resource's info
// "name" field, else a random identifier.
func (m *Manager) slugBase(ctx context.Context, r *models.Resource) (string, apperrors.Error) {
	if r.Slug != "" {
		return r.Slug, nil
	}
	base := NormalizeToSlug(strings.ToLower(r.Title))
	if base == "" && r.Info.Status == pgtype.Present {
		base = NormalizeToSlug(strings.ToLower(gjson.GetBytes(r.Info.Bytes, "name").String()))
	}
	if base == "" {
		id, err := gonanoid.Generate(fallbackSlugAlphabet, fallbackSlugLength)
		if err != nil {
			return "", ErrSharing.MsgErr("unable to generate fallback slug", err)
		}
		log.Ctx(ctx).Info().Str("resource_id", r.ResourceID.String()).
			Str("slug_base", id).
			Msg("title yields no slug, using random base")
		base = id
	}
	return base, nil
}

// GenerateUniqueSlug returns a slug free among the owner's importable
// resources of the same kind: the base itself, else base-1, base-2 and so on.
// The resource's own row is excluded from the probes so regeneration on a
// resource that already holds a slug returns that slug unchanged.
func (m *Manager) GenerateUniqueSlug(ctx context.Context, r *models.Resource) (string, apperrors.Error) {
	base, err := m.slugBase(ctx, r)
	if err != nil {
		return "", err
	}

	candidate := base
	for i := 1; i <= config.Config().SlugProbeLimit; i++ {
		taken, err := m.store.ImportableSlugExists(ctx, r.OwnerID, r.Kind, candidate, r.ResourceID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	log.Ctx(ctx).Error().Str("slug_base", base).Msg("slug probe limit reached")
	return "", ErrSlugExhausted.Msg("slug probe limit reached for base: " + base)
}

// AssignUniqueSlug generates a unique slug and stages it on the resource.
// With flush it also commits, retrying with a fresh slug if a concurrent
// writer took the candidate between the probe and the commit.
func (m *Manager) AssignUniqueSlug(ctx context.Context, r *models.Resource, flush bool) apperrors.Error {
	slug, err := m.GenerateUniqueSlug(ctx, r)
	if err != nil {
		return err
	}
	if slug != r.Slug {
		r.SlugPinned = false
	}
	r.Slug = slug
	if !flush {
		return nil
	}
	return m.flushAssignedSlug(ctx, r)
}

// SetSlug stages an explicitly chosen slug. It rejects malformed candidates
// and candidates already carried by another resource of the same owner and
// kind; unlike generation, the conflict check here is not limited to
// importable resources. Returns whether the resource changed. There is no
// retry on this path: a commit that still conflicts surfaces as ErrSlugInUse.
func (m *Manager) SetSlug(ctx context.Context, r *models.Resource, candidate string, flush bool) (bool, apperrors.Error) {
	if !IsValidSlug(candidate) {
		return false, ErrInvalidSlug.Msg("slug must match " + slugRegex)
	}
	if candidate == r.Slug {
		return false, nil
	}
	taken, err := m.store.ResourceSlugExists(ctx, r.OwnerID, r.Kind, candidate, r.ResourceID)
	if err != nil {
		return false, err
	}
	if taken {
		return false, ErrSlugInUse.Msg("slug already in use: " + candidate)
	}
	r.Slug = candidate
	r.SlugPinned = true
	if !flush {
		return true, nil
	}
	if err := m.Flush(ctx, r); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			return false, ErrSlugInUse.Msg("slug already in use: " + candidate)
		}
		return false, err
	}
	return true, nil
}

// flushAssignedSlug commits the resource, regenerating the slug and retrying
// when the partial unique index reports that a concurrent writer claimed it
// first. The regenerated probe sees the winner's committed row, so each
// attempt makes progress. Attempts are bounded by config.
//
// A pinned slug was chosen by the user and is never regenerated: losing the
// race on it surfaces as ErrSlugInUse.
func (m *Manager) flushAssignedSlug(ctx context.Context, r *models.Resource) apperrors.Error {
	if r.SlugPinned {
		if err := m.Flush(ctx, r); err != nil {
			if errors.Is(err, dberror.ErrAlreadyExists) {
				return ErrSlugInUse.Msg("slug already in use: " + r.Slug)
			}
			return err
		}
		return nil
	}
	var lastErr apperrors.Error
	err := retry.Do(
		func() error {
			lastErr = m.store.UpdateResource(ctx, r)
			if lastErr == nil {
				return nil
			}
			if !errors.Is(lastErr, dberror.ErrAlreadyExists) {
				return retry.Unrecoverable(lastErr)
			}
			slug, genErr := m.GenerateUniqueSlug(ctx, r)
			if genErr != nil {
				lastErr = genErr
				return retry.Unrecoverable(genErr)
			}
			log.Ctx(ctx).Info().Str("resource_id", r.ResourceID.String()).
				Str("slug", slug).
				Msg("slug lost uniqueness race, regenerated")
			r.Slug = slug
			return lastErr
		},
		retry.Attempts(uint(config.Config().SlugRetryAttempts)),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, dberror.ErrAlreadyExists) {
		log.Ctx(ctx).Error().Str("resource_id", r.ResourceID.String()).Msg("slug retry attempts exhausted")
		return ErrSlugExhausted.Err(err)
	}
	return lastErr
}
