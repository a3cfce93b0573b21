package repository

import (
	"database/sql"
	"time"

	"github.com/rzv09/sentiments-stocks/internal/model"

	"github.com/lib/pq"
)

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// SaveRawWithSymbols inserts the article and its ticker memberships in one
// transaction. Returns false when the URL was already ingested.
func (r *ArticleRepository) SaveRawWithSymbols(article *model.RawArticle, symbols []string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`
		INSERT INTO raw_news(url_hash, headline, detail, author, content, url, source, publisher, published_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`, article.URLHash, article.Headline, article.Detail, article.Author, article.Content,
		article.URL, article.Source, article.Publisher, article.PublishedAt).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	article.ID = id

	if len(symbols) > 0 {
		_, err = tx.Exec(`
			INSERT INTO article_symbol(article_id, symbol)
			SELECT $1, unnest($2::text[])
		`, id, pq.Array(symbols))
		if err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

// GetNewsByTicker returns articles tagged with the ticker whose published_at
// falls inside [from, to], newest first.
func (r *ArticleRepository) GetNewsByTicker(ticker string, from, to time.Time, limit, offset int) ([]model.RawArticle, error) {
	rows, err := r.db.Query(`
		SELECT n.id, n.url_hash, n.headline, n.detail, n.author, n.content, n.url,
			n.source, n.publisher, n.published_at, n.ingested_at, n.sentiment, n.confidence
		FROM raw_news n
		JOIN article_symbol s ON s.article_id = n.id
		WHERE s.symbol = $1 AND n.published_at BETWEEN $2 AND $3
		ORDER BY n.published_at DESC
		LIMIT $4 OFFSET $5
	`, ticker, from, to, limit, offset)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRawArticles(rows)
}

func (r *ArticleRepository) GetNewsByTickerTotal(ticker string, from, to time.Time) (int, error) {
	var total int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM raw_news n
		JOIN article_symbol s ON s.article_id = n.id
		WHERE s.symbol = $1 AND n.published_at BETWEEN $2 AND $3
	`, ticker, from, to).Scan(&total)
	return total, err
}

// GetUnlabeled returns articles the labeler has not touched yet, oldest
// ingested first so nothing starves.
func (r *ArticleRepository) GetUnlabeled(limit int) ([]model.RawArticle, error) {
	rows, err := r.db.Query(`
		SELECT id, url_hash, headline, detail, author, content, url,
			source, publisher, published_at, ingested_at, sentiment, confidence
		FROM raw_news
		WHERE sentiment IS NULL
		ORDER BY ingested_at ASC
		LIMIT $1
	`, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRawArticles(rows)
}

// SetSentiment records a label only if the article is still unlabeled,
// mirroring the labeler's conditional write. Returns false when another
// run labeled it first.
func (r *ArticleRepository) SetSentiment(urlHash, sentiment string, confidence float64) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE raw_news
		SET sentiment = $1, confidence = $2
		WHERE url_hash = $3 AND sentiment IS NULL
	`, sentiment, confidence, urlHash)

	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *ArticleRepository) GetTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM raw_news`).Scan(&total)
	return total, err
}

func (r *ArticleRepository) GetUnlabeledTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM raw_news WHERE sentiment IS NULL`).Scan(&total)
	return total, err
}

func (r *ArticleRepository) GetSymbolsByArticleIDs(ids []int64) (map[int64][]string, error) {
	rows, err := r.db.Query(`
		SELECT article_id, symbol FROM article_symbol WHERE article_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var symbol string
		if err := rows.Scan(&id, &symbol); err != nil {
			return nil, err
		}
		result[id] = append(result[id], symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func scanRawArticles(rows *sql.Rows) ([]model.RawArticle, error) {
	var articles []model.RawArticle
	for rows.Next() {
		var a model.RawArticle
		err := rows.Scan(&a.ID, &a.URLHash, &a.Headline, &a.Detail, &a.Author, &a.Content,
			&a.URL, &a.Source, &a.Publisher, &a.PublishedAt, &a.IngestedAt, &a.Sentiment, &a.Confidence)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}
