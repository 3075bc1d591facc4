package models

import "time"

type Post struct {
	ID       int64
	Title    string
	Content  string
	AuthorID int64
	// Image is an object storage key; empty when the post has no image.
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PostView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	Image     *string   `json:"image"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Post) View() PostView {
	v := PostView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Image != "" {
		image := p.Image
		v.Image = &image
	}
	return v
}

func (p Post) WithContent(title, content string) Post {
	p.Title = title
	p.Content = content
	return p
}
