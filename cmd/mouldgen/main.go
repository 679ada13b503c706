// Command mouldgen generates slip casting mould meshes from vessel profiles.
package main

func main() {
	Execute()
}
