// Command article-importer bulk-loads article JSON files into the database.
// Unlike the startup loader it talks to the real database configured through
// the environment, so it can be pointed at production for one-off imports:
//
//	ARTICLES_DIR=./articles go run ./cmd/article-importer
package main

import (
	"fmt"
	"log"
	"os"

	"newsiq/database"
	"newsiq/models"
	"newsiq/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if len(os.Args) > 1 {
		os.Setenv("ARTICLES_DIR", os.Args[1])
	}

	database.InitDB()
	defer database.CloseDB()

	db := database.GetDB()

	var before int64
	db.Model(&models.Article{}).Count(&before)
	fmt.Printf("Articles in database before import: %d\n", before)

	services.LoadArticlesFromFiles()

	var after, quizzes int64
	db.Model(&models.Article{}).Count(&after)
	db.Model(&models.Quiz{}).Count(&quizzes)

	fmt.Printf("\n✓ Import completed\n")
	fmt.Printf("✓ Articles imported this run: %d\n", after-before)
	fmt.Printf("✓ Total articles: %d, total quizzes: %d\n", after, quizzes)
}
