package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"invitetracker/entity"
	"invitetracker/internal/config"
)

const (
	collectionInvites         = "invites"
	collectionJoinRecords     = "join_records"
	collectionPersonalInvites = "personal_invites"
)

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) *MongoDB {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

// Ping verifies the server is reachable; used by the health endpoint and the
// startup readiness check.
func (m *MongoDB) Ping(ctx context.Context) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	return connection.Ping(ctx, nil)
}

// UpsertInvite writes the invite keyed by (guild, code). The stored created_at
// is set only on insert, so repeated syncs preserve the original creation date.
func (m *MongoDB) UpsertInvite(inv *entity.Invite) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	filter := bson.D{{Key: "guild_id", Value: inv.GuildID}, {Key: "code", Value: inv.Code}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "inviter_id", Value: inv.InviterID},
			{Key: "uses", Value: inv.Uses},
			{Key: "max_uses", Value: inv.MaxUses},
			{Key: "expires_at", Value: inv.ExpiresAt},
			{Key: "updated_at", Value: time.Now()},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "guild_id", Value: inv.GuildID},
			{Key: "code", Value: inv.Code},
			{Key: "created_at", Value: inv.CreatedAt},
		}},
	}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

func (m *MongoDB) GetInvite(guildID, code string) (*entity.Invite, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	filter := bson.D{{Key: "guild_id", Value: guildID}, {Key: "code", Value: code}}
	var inv entity.Invite
	err = collection.FindOne(m.ctx, filter).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find invite: %w", err)
	}
	return &inv, nil
}

func (m *MongoDB) FindInvitesByInviter(guildID, inviterID string) ([]*entity.Invite, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	// Empty guildID spans all guilds (cross-guild stats queries).
	filter := bson.D{{Key: "inviter_id", Value: inviterID}}
	if guildID != "" {
		filter = append(filter, bson.E{Key: "guild_id", Value: guildID})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var invites []*entity.Invite
	if err = cursor.All(m.ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

func (m *MongoDB) FindGuildInvites(guildID string, limit int64) ([]*entity.Invite, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	opts := options.Find()
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := collection.Find(m.ctx, bson.D{{Key: "guild_id", Value: guildID}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var invites []*entity.Invite
	if err = cursor.All(m.ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

func (m *MongoDB) CountGuildInvites(guildID string) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	return collection.CountDocuments(m.ctx, bson.D{{Key: "guild_id", Value: guildID}})
}

// IncrementInviteUses bumps the stored counter for one observed join.
func (m *MongoDB) IncrementInviteUses(guildID, code string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	filter := bson.D{{Key: "guild_id", Value: guildID}, {Key: "code", Value: code}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "uses", Value: 1}}}}
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) InsertJoin(rec *entity.JoinRecord) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionJoinRecords)
	_, err = collection.InsertOne(m.ctx, rec)
	return err
}

// FindRecentJoin is the dedup probe: the latest record for (guild, user, code)
// with joined_at at or after since, or nil.
func (m *MongoDB) FindRecentJoin(guildID, userID, code string, since time.Time) (*entity.JoinRecord, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionJoinRecords)
	filter := bson.D{
		{Key: "guild_id", Value: guildID},
		{Key: "user_id", Value: userID},
		{Key: "invite_code", Value: code},
		{Key: "joined_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}
	var rec entity.JoinRecord
	err = collection.FindOne(m.ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find join: %w", err)
	}
	return &rec, nil
}

func (m *MongoDB) FindJoins(f entity.JoinFilter) ([]*entity.JoinRecord, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionJoinRecords)
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: -1}})
	if f.Limit > 0 {
		opts = opts.SetLimit(f.Limit)
	}
	cursor, err := collection.Find(m.ctx, joinFilterQuery(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var records []*entity.JoinRecord
	if err = cursor.All(m.ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (m *MongoDB) CountJoins(f entity.JoinFilter) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionJoinRecords)
	return collection.CountDocuments(m.ctx, joinFilterQuery(f))
}

func joinFilterQuery(f entity.JoinFilter) bson.D {
	query := bson.D{}
	if f.GuildID != "" {
		query = append(query, bson.E{Key: "guild_id", Value: f.GuildID})
	}
	if f.InviterID != "" {
		query = append(query, bson.E{Key: "inviter_id", Value: f.InviterID})
	}
	if f.UserID != "" {
		query = append(query, bson.E{Key: "user_id", Value: f.UserID})
	}
	if f.PersonalOnly {
		query = append(query, bson.E{Key: "is_personal_invite", Value: true})
	}
	dateRange := bson.D{}
	if f.From != nil {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: *f.From})
	}
	if f.To != nil {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: *f.To})
	}
	if len(dateRange) > 0 {
		query = append(query, bson.E{Key: "joined_at", Value: dateRange})
	}
	return query
}

func (m *MongoDB) GetPersonalInvite(guildID, userID string) (*entity.PersonalInvite, error) {
	return m.findPersonalInvite(bson.D{{Key: "guild_id", Value: guildID}, {Key: "user_id", Value: userID}})
}

func (m *MongoDB) GetPersonalInviteByCode(guildID, code string) (*entity.PersonalInvite, error) {
	return m.findPersonalInvite(bson.D{{Key: "guild_id", Value: guildID}, {Key: "invite_code", Value: code}})
}

func (m *MongoDB) findPersonalInvite(filter bson.D) (*entity.PersonalInvite, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionPersonalInvites)
	var pi entity.PersonalInvite
	err = collection.FindOne(m.ctx, filter).Decode(&pi)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find personal invite: %w", err)
	}
	return &pi, nil
}

func (m *MongoDB) InsertPersonalInvite(pi *entity.PersonalInvite) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionPersonalInvites)
	_, err = collection.InsertOne(m.ctx, pi)
	return err
}

// DeleteGuildData removes every invite, join record and personal invite for a
// guild. Irreversible; used for test-environment resets.
func (m *MongoDB) DeleteGuildData(guildID string) (*entity.ClearResult, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)
	filter := bson.D{{Key: "guild_id", Value: guildID}}

	invites, err := db.Collection(collectionInvites).DeleteMany(m.ctx, filter)
	if err != nil {
		return nil, err
	}
	joins, err := db.Collection(collectionJoinRecords).DeleteMany(m.ctx, filter)
	if err != nil {
		return nil, err
	}
	personal, err := db.Collection(collectionPersonalInvites).DeleteMany(m.ctx, filter)
	if err != nil {
		return nil, err
	}

	return &entity.ClearResult{
		InvitesDeleted:         invites.DeletedCount,
		JoinsDeleted:           joins.DeletedCount,
		PersonalInvitesDeleted: personal.DeletedCount,
	}, nil
}
