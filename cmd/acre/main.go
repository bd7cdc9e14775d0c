// Command acre couples a grid-based landscape simulation with an agent
// population and runs scenario decks: farmers pumping an aquifer, or a
// grazing chain over eroding hillslopes.
package main

func main() {
	Execute()
}
