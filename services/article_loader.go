// services/article_loader.go - loads seed articles (and their quizzes) from
// JSON files at startup so a fresh database has content to read.
package services

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"newsiq/database"
	"newsiq/models"
)

type seedQuestion struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

type seedArticle struct {
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	Content     string         `json:"content"`
	Category    string         `json:"category"`
	Source      string         `json:"source"`
	SourceURL   string         `json:"source_url"`
	ImageURL    string         `json:"image_url"`
	Author      string         `json:"author"`
	ReadMinutes int            `json:"read_minutes"`
	PublishedAt *time.Time     `json:"published_at"`
	Questions   []seedQuestion `json:"questions"`
}

// LoadArticlesFromFiles imports every *.json file in ARTICLES_DIR (default
// ./articles). Articles already present (same title) are skipped, so the
// loader is safe to run on every boot.
func LoadArticlesFromFiles() {
	dir := os.Getenv("ARTICLES_DIR")
	if dir == "" {
		dir = "./articles"
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		log.Printf("No seed articles found in %s", dir)
		return
	}

	db := database.GetDB()
	imported := 0

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("Failed to read %s: %v", file, err)
			continue
		}

		var seeds []seedArticle
		if err := json.Unmarshal(data, &seeds); err != nil {
			log.Printf("Failed to parse %s: %v", file, err)
			continue
		}

		for _, seed := range seeds {
			var existing int64
			db.Model(&models.Article{}).Where("title = ?", seed.Title).Count(&existing)
			if existing > 0 {
				continue
			}

			article := models.Article{
				Title:       seed.Title,
				Summary:     seed.Summary,
				Content:     seed.Content,
				Category:    seed.Category,
				Source:      seed.Source,
				SourceURL:   seed.SourceURL,
				ImageURL:    seed.ImageURL,
				Author:      seed.Author,
				ReadMinutes: seed.ReadMinutes,
				PublishedAt: seed.PublishedAt,
				IsActive:    true,
			}
			if err := db.Create(&article).Error; err != nil {
				log.Printf("Failed to import article %q: %v", seed.Title, err)
				continue
			}

			if len(seed.Questions) > 0 {
				if err := createQuizForArticle(article, seed.Questions); err != nil {
					log.Printf("Failed to create quiz for %q: %v", seed.Title, err)
				}
			}
			imported++
		}
	}

	if imported > 0 {
		log.Printf("✅ Imported %d seed articles", imported)
	}
}

func createQuizForArticle(article models.Article, questions []seedQuestion) error {
	db := database.GetDB()

	quiz := models.Quiz{
		ArticleID: article.ID,
		Title:     article.Title + " Quiz",
	}
	if err := db.Create(&quiz).Error; err != nil {
		return err
	}

	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		question := models.QuizQuestion{
			QuizID:       quiz.ID,
			Text:         q.Text,
			Options:      string(options),
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		}
		if err := db.Create(&question).Error; err != nil {
			return err
		}
	}
	return nil
}
