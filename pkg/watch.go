package mmcheck

import "fmt"

func (conn *connection) executeWatch(watch *Watch, channel *channel) error {
	envName := ""
	if watch.Name != nil {
		envName = *watch.Name
		// Watching a missing environment is fine; it may be checked later.
	}

	conn.database.watchers.addWatcher(channel, envName)

	if envName == "" {
		channel.writeAckMessage("watching all environments")
	} else {
		channel.writeAckMessage(fmt.Sprintf("watching %s", envName))
	}
	return nil
}
