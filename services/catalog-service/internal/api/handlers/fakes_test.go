package handlers

import (
	"context"
	"io"
	"time"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	pkgmodels "github.com/farhyn/catalog-platform/pkg/models"
	pkgutils "github.com/farhyn/catalog-platform/pkg/utils"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/services"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/security"
)

type fakeProductService struct {
	err      error
	products map[int64]*models.Product
	deleted  []int64

	lastUpload *services.Upload
	lastBody   []byte
	lastLabel  pkgmodels.Marketplace
	lastBy     string
}

func (f *fakeProductService) create(upload *services.Upload, changedBy string, label pkgmodels.Marketplace) (*models.Product, error) {
	f.lastUpload, f.lastBy = upload, changedBy
	if upload != nil {
		f.lastBody, _ = io.ReadAll(upload.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	csv := "https://cdn.test/media/" + string(label) + "/bodysuit.csv"
	return &models.Product{ID: 7, Name: "Bodysuit", Label: label, ImageURL: "https://cdn.test/media/product_images/bodysuit.png", CSVURL: &csv, IsActive: true}, nil
}

func (f *fakeProductService) CreateShopifyProduct(_ context.Context, upload *services.Upload, changedBy string) (*models.Product, error) {
	return f.create(upload, changedBy, pkgmodels.MarketplaceShopify)
}

func (f *fakeProductService) CreateAmazonProduct(_ context.Context, upload *services.Upload, changedBy string) (*models.Product, error) {
	return f.create(upload, changedBy, pkgmodels.MarketplaceAmazon)
}

func (f *fakeProductService) ListProducts(_ context.Context, label pkgmodels.Marketplace, page *pkgutils.Pagination) ([]*models.Product, error) {
	f.lastLabel = label
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	page.SetTotal(int64(len(out)))
	if limit := page.GetLimit(); limit > 0 {
		start := page.GetOffset()
		if start > len(out) {
			start = len(out)
		}
		end := start + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (f *fakeProductService) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products[id], nil
}

func (f *fakeProductService) DeleteProduct(_ context.Context, id int64, changedBy string) error {
	f.lastBy = changedBy
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMemberService struct {
	err     error
	user    *models.User
	tokens  *security.TokenPair
	profile *models.Profile

	registered  services.RegisterInput
	refreshWith string
	updateIn    services.ProfileInput
	updateBio   string
	updateFile  []byte
	target      string
	caller      *interfaces.Principal
}

func (f *fakeMemberService) Register(_ context.Context, in services.RegisterInput) (*models.User, *security.TokenPair, error) {
	f.registered = in
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.user, f.tokens, nil
}

func (f *fakeMemberService) Login(context.Context, string, string) (*models.User, *security.TokenPair, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.user, f.tokens, nil
}

func (f *fakeMemberService) Refresh(_ context.Context, refreshToken string) (*security.TokenPair, error) {
	f.refreshWith = refreshToken
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

func (f *fakeMemberService) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	f.target = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeMemberService) UpdateProfile(_ context.Context, caller *interfaces.Principal, target string, in services.ProfileInput) (*models.Profile, error) {
	f.caller, f.target, f.updateIn = caller, target, in
	if in.Bio != nil {
		f.updateBio = *in.Bio
	}
	if in.Picture != nil {
		f.updateFile, _ = io.ReadAll(in.Picture.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeMemberService) TokenTTL() (int, int) {
	return 3600, 14 * 24 * 3600
}

type fakeSSO struct {
	err   error
	state string
	code  string
}

func (f *fakeSSO) AuthCodeURL(state string) string {
	f.state = state
	return "https://id.example.com/auth?state=" + state
}

func (f *fakeSSO) Exchange(_ context.Context, code string) (string, time.Time, error) {
	f.code = code
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "id-token", time.Now().Add(time.Hour), nil
}
