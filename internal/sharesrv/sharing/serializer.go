package sharing

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/lumenworks/lumen-server/internal/common/apperrors"
	"github.com/lumenworks/lumen-server/internal/sharesrv/db/models"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type resourceView struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Owner      string    `json:"owner"`
	Title      string    `json:"title"`
	Slug       *string   `json:"slug"`
	Importable bool      `json:"importable"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OwnerPathRef is the read-only composite address of a slugged resource:
// u/<owner>/<kind-abbrev>/<slug>. Empty when no slug is assigned.
func OwnerPathRef(r *models.Resource) string {
	if r.Slug == "" {
		return ""
	}
	return fmt.Sprintf("u/%s/%s/%s", r.OwnerID, r.Kind.Abbrev(), r.Slug)
}

// SerializeResource renders the sharing view of a resource as wire JSON. The
// computed username_and_slug field and the grantee list are injected after
// marshalling; slug and username_and_slug are null until a slug is assigned.
func (m *Manager) SerializeResource(ctx context.Context, r *models.Resource) ([]byte, apperrors.Error) {
	view := resourceView{
		ID:         r.ResourceID.String(),
		Kind:       string(r.Kind),
		Owner:      string(r.OwnerID),
		Title:      r.Title,
		Importable: r.Importable,
		Published:  r.Published,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Slug != "" {
		view.Slug = &r.Slug
	}

	out, err := json.Marshal(view)
	if err != nil {
		return nil, ErrSharing.MsgErr("unable to serialize resource", err)
	}

	if ref := OwnerPathRef(r); ref != "" {
		out, err = sjson.SetBytes(out, "username_and_slug", ref)
	} else {
		out, err = sjson.SetBytes(out, "username_and_slug", nil)
	}
	if err != nil {
		return nil, ErrSharing.MsgErr("unable to serialize resource", err)
	}

	users, aerr := m.ListSharedWith(ctx, r)
	if aerr != nil {
		return nil, aerr
	}
	out, err = sjson.SetBytes(out, "users_shared_with", users)
	if err != nil {
		return nil, ErrSharing.MsgErr("unable to serialize resource", err)
	}
	return out, nil
}

// ApplySharingPatch applies a wire JSON patch over the sharing fields of a
// resource. Only slug, importable and published are writable, and every write
// goes through the manager's transitions so the cascades hold. Slug is
// applied first so a patch that sets both a slug and importable keeps the
// chosen slug instead of generating one.
func (m *Manager) ApplySharingPatch(ctx context.Context, r *models.Resource, patch []byte, flush bool) apperrors.Error {
	if !gjson.ValidBytes(patch) {
		return ErrInvalidPatch.Msg("malformed json")
	}
	doc := gjson.ParseBytes(patch)
	if !doc.IsObject() {
		return ErrInvalidPatch.Msg("patch must be a json object")
	}

	if v := doc.Get("slug"); v.Exists() {
		if v.Type != gjson.String {
			return ErrInvalidPatch.Msg("slug must be a string")
		}
		if _, err := m.SetSlug(ctx, r, v.String(), false); err != nil {
			return err
		}
	}
	if v := doc.Get("importable"); v.Exists() {
		if v.Type != gjson.True && v.Type != gjson.False {
			return ErrInvalidPatch.Msg("importable must be a boolean")
		}
		var err apperrors.Error
		if v.Bool() {
			err = m.MakeImportable(ctx, r, false)
		} else {
			err = m.MakeNonImportable(ctx, r, false)
		}
		if err != nil {
			return err
		}
	}
	if v := doc.Get("published"); v.Exists() {
		if v.Type != gjson.True && v.Type != gjson.False {
			return ErrInvalidPatch.Msg("published must be a boolean")
		}
		var err apperrors.Error
		if v.Bool() {
			err = m.Publish(ctx, r, false)
		} else {
			err = m.Unpublish(ctx, r, false)
		}
		if err != nil {
			return err
		}
	}

	if !flush {
		return nil
	}
	return m.flushAssignedSlug(ctx, r)
}
