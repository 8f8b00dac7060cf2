package main

import (
	"time"

	"github.com/soaklib/soak/metadata"
)

// The compiled-in bookshop model. Mapping files under the configured
// mappings directory add definition-only entities next to these.

// Author writes books.
type Author struct {
	id       string  `soak:"id,key,kind:uuid"`
	name     string  `soak:"name"`
	nickname *string `soak:"nickname"`
	books    []*Book `soak:"books,many:book"`
}

func (a *Author) ID() string            { return a.id }
func (a *Author) SetID(v string)        { a.id = v }
func (a *Author) Name() string          { return a.name }
func (a *Author) SetName(v string)      { a.name = v }
func (a *Author) Nickname() *string     { return a.nickname }
func (a *Author) SetNickname(v *string) { a.nickname = v }
func (a *Author) Books() []*Book        { return a.books }
func (a *Author) AddBook(b *Book)       { a.books = append(a.books, b) }

// Book is one published title.
type Book struct {
	id          string         `soak:"id,key,kind:uuid"`
	title       string         `soak:"title"`
	pages       int64          `soak:"pages"`
	price       *float64       `soak:"price,kind:decimal"`
	released    time.Time      `soak:"released,kind:date"`
	readingTime time.Duration  `soak:"reading_time"`
	tags        map[string]any `soak:"tags"`
	author      *Author        `soak:"author,one:author"`
	publisher   *Publisher     `soak:"publisher,one:publisher"`
}

func (b *Book) ID() string                     { return b.id }
func (b *Book) SetID(v string)                 { b.id = v }
func (b *Book) Title() string                  { return b.title }
func (b *Book) SetTitle(v string)              { b.title = v }
func (b *Book) Pages() int64                   { return b.pages }
func (b *Book) SetPages(v int64)               { b.pages = v }
func (b *Book) Price() *float64                { return b.price }
func (b *Book) SetPrice(v *float64)            { b.price = v }
func (b *Book) Released() time.Time            { return b.released }
func (b *Book) SetReleased(v time.Time)        { b.released = v }
func (b *Book) ReadingTime() time.Duration     { return b.readingTime }
func (b *Book) SetReadingTime(v time.Duration) { b.readingTime = v }
func (b *Book) Tags() map[string]any           { return b.tags }
func (b *Book) SetTags(v map[string]any)       { b.tags = v }
func (b *Book) Author() *Author                { return b.author }
func (b *Book) SetAuthor(v *Author)            { b.author = v }
func (b *Book) Publisher() *Publisher          { return b.publisher }
func (b *Book) SetPublisher(v *Publisher)      { b.publisher = v }

// Publisher owns the imprint a book appears under.
type Publisher struct {
	id      string    `soak:"id,key,kind:uuid"`
	name    string    `soak:"name,unique"`
	founded time.Time `soak:"founded,kind:date"`
	books   []*Book   `soak:"books,many:book"`
}

func (p *Publisher) ID() string             { return p.id }
func (p *Publisher) SetID(v string)         { p.id = v }
func (p *Publisher) Name() string           { return p.name }
func (p *Publisher) SetName(v string)       { p.name = v }
func (p *Publisher) Founded() time.Time     { return p.founded }
func (p *Publisher) SetFounded(v time.Time) { p.founded = v }
func (p *Publisher) Books() []*Book         { return p.books }
func (p *Publisher) AddBook(b *Book)        { p.books = append(p.books, b) }

func registerModels(reg *metadata.Registry) {
	metadata.MustRegister[Author](reg, "author")
	metadata.MustRegister[Book](reg, "book")
	metadata.MustRegister[Publisher](reg, "publisher")
}
