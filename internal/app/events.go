package app

const TopicAuthLogin = "auth:login"
const TopicAuthLogout = "auth:logout"
const TopicUserCreated = "user:created"
const TopicUserDisabled = "user:disabled"
const TopicUserDeleted = "user:deleted"
const TopicNotificationCreated = "notification:created"
const TopicSessionTerminated = "session:terminated"
