// Command tasks runs the maintenance jobs that the HTTP server does not:
// notification dispatch and cleanup, cart cleanup, template seeding,
// translation maintenance and sitemap generation. Intended to be invoked
// from cron.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"shopmart/config"
	"shopmart/models"
	"shopmart/repositories"
	"shopmart/services"
	"shopmart/utils"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: tasks <command> [flags]

Commands:
  notifications-process   dispatch due pending notifications
  notifications-retry     retry failed notifications under the attempt limit
  notifications-cleanup   delete old handled notifications
  carts-cleanup           delete abandoned empty carts
  templates-init          seed the default email templates
  translations-sync       add missing UI message keys to every locale
  catalog-translations    catalog translation maintenance
  sitemap-generate        write a sitemap.xml for the storefront
  admin-create            create an admin account`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	config.LoadConfig()
	config.ConnectDB()
	defer config.CloseDB()

	cfg := config.AppConfig

	templateRepo := repositories.NewEmailTemplateRepository()
	var mailer services.Mailer
	emailService, err := services.NewEmailService(templateRepo)
	if err != nil {
		log.Printf("Running without SMTP: %v", err)
		mailer = services.LogMailer{}
	} else {
		mailer = emailService
	}

	userRepo := repositories.NewUserRepository()
	notificationService := services.NewNotificationService(
		repositories.NewNotificationRepository(), userRepo, mailer, cfg.DefaultLocale)

	switch os.Args[1] {
	case "notifications-process":
		fs := flag.NewFlagSet("notifications-process", flag.ExitOnError)
		batch := fs.Int("batch", 50, "maximum notifications per run")
		fs.Parse(os.Args[2:])

		sent, err := notificationService.ProcessPending(*batch)
		exitOn(err)
		fmt.Printf("Sent %d notification(s)\n", sent)

	case "notifications-retry":
		retried, sent, err := notificationService.RetryFailed()
		exitOn(err)
		fmt.Printf("Retried %d notification(s), %d sent\n", retried, sent)

	case "notifications-cleanup":
		fs := flag.NewFlagSet("notifications-cleanup", flag.ExitOnError)
		days := fs.Int("days", 90, "delete handled notifications older than this many days")
		fs.Parse(os.Args[2:])

		deleted, err := notificationService.Cleanup(*days)
		exitOn(err)
		fmt.Printf("Deleted %d notification(s)\n", deleted)

	case "carts-cleanup":
		fs := flag.NewFlagSet("carts-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "delete empty carts untouched for this many days")
		fs.Parse(os.Args[2:])

		cartService := services.NewCartService(
			repositories.NewCartRepository(),
			repositories.NewProductRepository(),
			services.PricingRules{
				TaxRate:           cfg.TaxRate,
				ShippingFlatRate:  cfg.ShippingFlatRate,
				FreeShippingAbove: cfg.FreeShippingAbove,
			})
		deleted, err := cartService.CleanupAbandonedCarts(*days)
		exitOn(err)
		fmt.Printf("Deleted %d cart(s)\n", deleted)

	case "templates-init":
		created, err := services.SeedDefaultTemplates(templateRepo)
		exitOn(err)
		fmt.Printf("Created %d template(s)\n", created)

	case "translations-sync":
		translationService := services.NewTranslationService(cfg.TranslationsDir, cfg.DefaultLocale)
		created, err := translationService.Sync()
		exitOn(err)
		for locale, count := range created {
			fmt.Printf("%s: %d key(s) added\n", locale, count)
		}

	case "catalog-translations":
		runCatalogTranslations(os.Args[2:], cfg.DefaultLocale)

	case "sitemap-generate":
		fs := flag.NewFlagSet("sitemap-generate", flag.ExitOnError)
		base := fs.String("base", "http://localhost:"+cfg.Port, "public base URL")
		out := fs.String("out", filepath.Join(cfg.UploadDir, "sitemap.xml"), "output file")
		fs.Parse(os.Args[2:])

		sitemapService := services.NewSitemapService(repositories.NewProductRepository())
		count, err := sitemapService.WriteFile(*base, *out)
		exitOn(err)
		fmt.Printf("Wrote %d URL(s) to %s\n", count, *out)

	case "admin-create":
		fs := flag.NewFlagSet("admin-create", flag.ExitOnError)
		email := fs.String("email", "", "admin email (required)")
		password := fs.String("password", "", "admin password (required)")
		name := fs.String("name", "Administrator", "full name")
		fs.Parse(os.Args[2:])

		if *email == "" || *password == "" {
			fs.Usage()
			os.Exit(2)
		}
		exitOn(createAdmin(userRepo, *email, *password, *name))
		fmt.Printf("Admin %s created\n", *email)

	default:
		usage()
	}
}

func runCatalogTranslations(args []string, defaultLocale string) {
	fs := flag.NewFlagSet("catalog-translations", flag.ExitOnError)
	action := fs.String("action", "stats", "stats, create-missing or duplicate")
	source := fs.String("source", defaultLocale, "source locale")
	target := fs.String("target", "", "target locale")
	fs.Parse(args)

	svc := services.NewCatalogTranslationService(repositories.NewCatalogTranslationRepository(), defaultLocale)

	switch *action {
	case "stats":
		stats, err := svc.Stats()
		exitOn(err)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LOCALE\tTRANSLATED\tMISSING\tPERCENT")
		for _, st := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", st.Locale, st.Translated, st.Missing, st.Percent)
		}
		w.Flush()

	case "create-missing":
		if *target == "" {
			exitOn(fmt.Errorf("-target is required for create-missing"))
		}
		created, err := svc.CreateMissing(*target)
		exitOn(err)
		fmt.Printf("Created %d translation stub(s) for %s\n", created, *target)

	case "duplicate":
		if *target == "" {
			exitOn(fmt.Errorf("-target is required for duplicate"))
		}
		copied, err := svc.Duplicate(*source, *target)
		exitOn(err)
		fmt.Printf("Copied %d translation(s) from %s to %s\n", copied, *source, *target)

	default:
		fs.Usage()
		os.Exit(2)
	}
}

func createAdmin(userRepo *repositories.UserRepository, email, password, name string) error {
	if existing, _ := userRepo.FindByEmail(email); existing != nil {
		return fmt.Errorf("user %s already exists", email)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{Email: email, Password: hashed, Role: "admin"}
	if err := userRepo.Create(user); err != nil {
		return err
	}
	return userRepo.CreateProfile(&models.UserProfile{UserID: user.ID, FullName: name})
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
