package mmcheck

import "sync"

// watcherSet tracks which channels are watching which environments.
type watcherSet struct {
	mu          sync.Mutex
	watchers    map[connectionID]map[channelID]*watcher
	numWatchers int
}

type watcher struct {
	Channel *channel
	EnvName string // empty means watch all environments
}

func newWatcherSet() *watcherSet {
	return &watcherSet{
		watchers: map[connectionID]map[channelID]*watcher{},
	}
}

func (set *watcherSet) addWatcher(channel *channel, envName string) {
	set.mu.Lock()
	defer set.mu.Unlock()

	connID := channel.connection.id
	watchersForConn := set.watchers[connID]
	if watchersForConn == nil {
		watchersForConn = map[channelID]*watcher{}
		set.watchers[connID] = watchersForConn
	}
	watchersForConn[channelID(channel.id)] = &watcher{
		Channel: channel,
		EnvName: envName,
	}
	set.numWatchers++
}

func (set *watcherSet) removeWatchersForConn(id connectionID) {
	set.mu.Lock()
	defer set.mu.Unlock()

	set.numWatchers -= len(set.watchers[id])
	delete(set.watchers, id)
}

func (set *watcherSet) getNumWatchers() int {
	set.mu.Lock()
	defer set.mu.Unlock()
	return set.numWatchers
}

// notify pushes an update to every matching watcher. The sends happen
// outside the lock; they can block on a slow connection.
func (set *watcherSet) notify(update *EnvUpdate) {
	set.mu.Lock()
	var channels []*channel
	for _, watchersForConn := range set.watchers {
		for _, watcher := range watchersForConn {
			if watcher.EnvName != "" && watcher.EnvName != update.Env.Name {
				continue
			}
			channels = append(channels, watcher.Channel)
		}
	}
	set.mu.Unlock()

	for _, channel := range channels {
		channel.writeEnvUpdate(update)
	}
}
