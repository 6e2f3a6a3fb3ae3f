package mmcheck

func (conn *connection) executeGet(get *Get, channel *channel) error {
	info, err := conn.database.GetEnv(get.Name)
	if err != nil {
		return err
	}
	channel.writeInitialResult(&InitialResult{Env: info})

	if get.Live {
		conn.database.watchers.addWatcher(channel, get.Name)
	}
	return nil
}

func (conn *connection) executeAxioms(axioms *Axioms, channel *channel) error {
	f, env, err := conn.database.LoadEnv(axioms.Name)
	if err != nil {
		return err
	}
	channel.writeInitialResult(&InitialResult{
		Asserts: assertInfos(f, env),
		Listing: DescribeEnv(f, env),
	})
	return nil
}

func (conn *connection) executeList(channel *channel) error {
	infos, err := conn.database.ListEnvs()
	if err != nil {
		return err
	}
	channel.writeInitialResult(&InitialResult{Envs: infos})
	return nil
}
