package pubsub

// Topic names progress events are published under.
const (
	TopicTaskEvents        = "prep.task.events"
	TopicAchievementEvents = "prep.achievement.events"
	TopicJourneyEvents     = "prep.journey.events"
)
