package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"moviecatalog/movie"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// counterID is the key of the item holding the id sequence. Movie ids start at 1.
const counterID = "0"

// MovieRepository stores each movie as one item with its genres embedded,
// so a movie and its genre associations are always written together.
type MovieRepository struct {
	client *dynamodb.Client
	table  string
}

type movieItem struct {
	ID               int64       `dynamodbav:"id"`
	Title            string      `dynamodbav:"title"`
	OriginalTitle    string      `dynamodbav:"original_title"`
	OriginalLanguage string      `dynamodbav:"original_language"`
	Overview         string      `dynamodbav:"overview"`
	PosterPath       string      `dynamodbav:"poster_path"`
	BackdropPath     string      `dynamodbav:"backdrop_path"`
	ReleaseDate      string      `dynamodbav:"release_date"`
	Popularity       float64     `dynamodbav:"popularity"`
	VoteAverage      float64     `dynamodbav:"vote_average"`
	VoteCount        int         `dynamodbav:"vote_count"`
	Adult            bool        `dynamodbav:"adult"`
	Video            bool        `dynamodbav:"video"`
	GenreIDs         []genreItem `dynamodbav:"genre_ids"`
}

type genreItem struct {
	ID    int64 `dynamodbav:"id"`
	Value int64 `dynamodbav:"value"`
}

type counterItem struct {
	Seq int64 `dynamodbav:"seq"`
}

func NewMovieRepository(client *dynamodb.Client, table string) *MovieRepository {
	return &MovieRepository{
		client: client,
		table:  table,
	}
}

// CreateTable creates the movies table when it does not exist yet.
func (r *MovieRepository) CreateTable(ctx context.Context) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	_, err := r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: &r.table,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dynamodb: create movies table: %w", err)
	}
	return nil
}

func (r *MovieRepository) FindAll(ctx context.Context) ([]movie.Movie, error) {
	items, err := r.scan(ctx, "id > :zero", map[string]types.AttributeValue{
		":zero": &types.AttributeValueMemberN{Value: counterID},
	})
	if err != nil {
		return nil, err
	}

	movies := make([]movie.Movie, len(items))
	for i, item := range items {
		movies[i] = toDomainMovie(item)
	}
	return movies, nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id int64) (movie.Movie, error) {
	if err := validateTable(r.table); err != nil {
		return movie.Movie{}, err
	}
	if id <= 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &r.table,
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return movie.Movie{}, fmt.Errorf("dynamodb: get movie: %w", err)
	}
	if len(out.Item) == 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}

	var item movieItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return movie.Movie{}, fmt.Errorf("dynamodb: unmarshal movie: %w", err)
	}
	return toDomainMovie(item), nil
}

// FindByOriginalTitle returns the oldest movie with the given original title.
// TODO: query a global secondary index on original_title instead of scanning.
func (r *MovieRepository) FindByOriginalTitle(ctx context.Context, title string) (movie.Movie, error) {
	items, err := r.scan(ctx, "original_title = :title AND id > :zero", map[string]types.AttributeValue{
		":title": &types.AttributeValueMemberS{Value: title},
		":zero":  &types.AttributeValueMemberN{Value: counterID},
	})
	if err != nil {
		return movie.Movie{}, err
	}
	if len(items) == 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	return toDomainMovie(items[0]), nil
}

func (r *MovieRepository) Save(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	if err := validateTable(r.table); err != nil {
		return movie.Movie{}, err
	}

	insert := m.ID == 0
	m.GenreIDs = append([]movie.GenreID(nil), m.GenreIDs...)
	need := int64(len(m.GenreIDs))
	if insert {
		need++
	}

	next := int64(0)
	if need > 0 {
		last, err := r.allocate(ctx, need)
		if err != nil {
			return movie.Movie{}, err
		}
		next = last - need + 1
	}
	if insert {
		m.ID = next
		next++
	}
	for i := range m.GenreIDs {
		m.GenreIDs[i].ID = next
		m.GenreIDs[i].MovieID = m.ID
		next++
	}

	av, err := attributevalue.MarshalMap(toItem(m))
	if err != nil {
		return movie.Movie{}, fmt.Errorf("dynamodb: marshal movie: %w", err)
	}

	condition := "attribute_exists(id)"
	if insert {
		condition = "attribute_not_exists(id)"
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.table,
		Item:                av,
		ConditionExpression: aws.String(condition),
	})
	if err != nil {
		if isConditionFailed(err) && !insert {
			return movie.Movie{}, movie.ErrMovieNotFound
		}
		return movie.Movie{}, fmt.Errorf("dynamodb: put movie: %w", err)
	}

	return m, nil
}

func (r *MovieRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := validateTable(r.table); err != nil {
		return err
	}
	if id <= 0 {
		return movie.ErrMovieNotFound
	}

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           &r.table,
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return movie.ErrMovieNotFound
		}
		return fmt.Errorf("dynamodb: delete movie: %w", err)
	}
	return nil
}

// allocate reserves n ids and returns the last one.
func (r *MovieRepository) allocate(ctx context.Context, n int64) (int64, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &r.table,
		Key:              map[string]types.AttributeValue{"id": &types.AttributeValueMemberN{Value: counterID}},
		UpdateExpression: aws.String("ADD seq :n"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n": &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("dynamodb: allocate ids: %w", err)
	}

	var c counterItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &c); err != nil {
		return 0, fmt.Errorf("dynamodb: unmarshal counter: %w", err)
	}
	return c.Seq, nil
}

func (r *MovieRepository) scan(ctx context.Context, filter string, values map[string]types.AttributeValue) ([]movieItem, error) {
	if err := validateTable(r.table); err != nil {
		return nil, err
	}

	var items []movieItem
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 &r.table,
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: values,
		ConsistentRead:            aws.Bool(true),
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: scan movies: %w", err)
		}

		var page []movieItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("dynamodb: unmarshal movies: %w", err)
		}
		items = append(items, page...)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func key(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func toItem(m movie.Movie) movieItem {
	item := movieItem{
		ID:               m.ID,
		Title:            m.Title,
		OriginalTitle:    m.OriginalTitle,
		OriginalLanguage: m.OriginalLanguage,
		Overview:         m.Overview,
		PosterPath:       m.PosterPath,
		BackdropPath:     m.BackdropPath,
		ReleaseDate:      m.ReleaseDate,
		Popularity:       m.Popularity,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		Adult:            m.Adult,
		Video:            m.Video,
		GenreIDs:         make([]genreItem, len(m.GenreIDs)),
	}
	for i, g := range m.GenreIDs {
		item.GenreIDs[i] = genreItem{ID: g.ID, Value: g.Value}
	}
	return item
}

func toDomainMovie(item movieItem) movie.Movie {
	m := movie.Movie{
		ID:               item.ID,
		Title:            item.Title,
		OriginalTitle:    item.OriginalTitle,
		OriginalLanguage: item.OriginalLanguage,
		Overview:         item.Overview,
		PosterPath:       item.PosterPath,
		BackdropPath:     item.BackdropPath,
		ReleaseDate:      item.ReleaseDate,
		Popularity:       item.Popularity,
		VoteAverage:      item.VoteAverage,
		VoteCount:        item.VoteCount,
		Adult:            item.Adult,
		Video:            item.Video,
	}
	if len(item.GenreIDs) > 0 {
		m.GenreIDs = make([]movie.GenreID, len(item.GenreIDs))
		for i, g := range item.GenreIDs {
			m.GenreIDs[i] = movie.GenreID{ID: g.ID, Value: g.Value, MovieID: item.ID}
		}
	}
	return m
}
