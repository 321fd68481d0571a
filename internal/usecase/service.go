package usecase

import (
	"arc-web/internal/catalog"
	"arc-web/internal/data/repository"
	"arc-web/internal/token"
	"arc-web/pkg/jwt"
	"arc-web/pkg/mail"
	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	Verification VerificationService
	Link         LinkService
	Purchase     PurchaseService
	Product      ProductService
	Cart         CartService
	Order        OrderService
	User         UserService
}

func NewService(
	repo *repository.Repository,
	products *catalog.Catalog,
	mailer mail.Sender,
	tokens *jwt.Service,
	config *utils.Config,
	log *zap.Logger,
	opts ...token.Option,
) *Service {
	codes := token.NewStore(repo, token.EmailVerification(config.Tokens.VerificationCodeTTL), log, opts...)
	resets := token.NewStore(repo, token.PasswordReset(config.Tokens.PasswordResetTTL), log, opts...)
	links := token.NewStore(repo, token.LinkCode(config.Tokens.LinkCodeTTL), log, opts...)

	verification := NewVerificationService(repo, codes, resets, mailer, config, log)

	return &Service{
		Auth:         NewAuthService(repo, verification, tokens, config, log),
		Verification: verification,
		Link:         NewLinkService(repo, links, log),
		Purchase:     NewPurchaseService(repo, log),
		Product:      NewProductService(products),
		Cart:         NewCartService(repo, products, log),
		Order:        NewOrderService(repo, log),
		User:         NewUserService(repo, log),
	}
}
