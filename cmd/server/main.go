package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/config"
	"github.com/menuvio/menu-api/internal/database"
	"github.com/menuvio/menu-api/internal/handler"
	"github.com/menuvio/menu-api/internal/middleware"
	"github.com/menuvio/menu-api/internal/queue"
	"github.com/menuvio/menu-api/internal/repository"
	"github.com/menuvio/menu-api/internal/router"
)

func main() {
	// Load a .env file when present; real deployments set the variables
	// directly and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()
	if cfg.DevAuthBypass {
		log.Println("WARNING: INSECURE_DEV_AUTH_BYPASS is enabled; requests without a token act as the Host subdomain's restaurant")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis backs the public response cache and the auth rate limiter.
	// Both degrade to passthrough when the client is nil.
	rdb := config.NewRedisClient()

	restaurants := repository.NewRestaurantRepo(db)
	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	meals := repository.NewMealRepo(db)
	reviews := repository.NewReviewRepo(db)

	auth := handler.NewAuthHandler(cfg, restaurants, users)
	rest := handler.NewRestaurantHandler(cfg, restaurants)
	cats := handler.NewCategoryHandler(cfg, categories)
	mh := handler.NewMealHandler(cfg, meals, categories)
	discounts := handler.NewDiscountHandler(meals)
	rv := handler.NewReviewHandler(meals, reviews)
	pub := &handler.PublicHandler{Restaurants: restaurants, Categories: categories, Meals: meals, Reviews: reviews}

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e, cfg.UploadDir)
	router.RegisterAuth(e, auth, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterPublic(e, pub, config.LoadCacheConfig(), rdb)
	router.RegisterOwner(e, cfg, restaurants, users, rest, cats, mh, discounts)
	router.RegisterReviews(e, cfg, restaurants, users, rv)

	// The event consumer keeps its own connection and reconnect loop; it
	// must not block startup or take the API down with it.
	go func() {
		if err := queue.StartMenuEventsConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
