package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Repos struct {
	User     repos.UserRepo
	Category repos.CategoryRepo
	Product  repos.ProductRepo
	Cart     repos.CartRepo
	Order    repos.OrderRepo
	Review   repos.ReviewRepo
	Attempt  repos.AttemptRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:     repos.NewUserRepo(db, log),
		Category: repos.NewCategoryRepo(db, log),
		Product:  repos.NewProductRepo(db, log),
		Cart:     repos.NewCartRepo(db, log),
		Order:    repos.NewOrderRepo(db, log),
		Review:   repos.NewReviewRepo(db, log),
		Attempt:  repos.NewAttemptRepo(db, log),
	}
}
